package main

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
)

var templateFuncs = template.FuncMap{
	"dict": func(values ...any) (map[string]any, error) {
		if len(values)%2 != 0 {
			return nil, fmt.Errorf("invalid dict call")
		}
		dict := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings")
			}
			dict[key] = values[i+1]
		}
		return dict, nil
	},
	"add": func(a, b int) int {
		return a + b
	},
	"timeAgo": timeAgo,
	"date": func(t time.Time) string {
		return t.Format("2 Jan 2006")
	},
}

// timeAgo 相对时间（马来语）
func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	switch {
	case seconds < 60:
		return "baru sahaja"
	case seconds < 3600:
		return fmt.Sprintf("%d minit lalu", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d jam lalu", seconds/3600)
	case seconds < 2592000:
		return fmt.Sprintf("%d hari lalu", seconds/86400)
	case seconds < 31536000:
		return fmt.Sprintf("%d bulan lalu", seconds/2592000)
	}
	return fmt.Sprintf("%d tahun lalu", seconds/31536000)
}

// views 每个页面模板，键名与 handler 中使用的一致
var views = []string{
	"error.html",
	"recipe/list.html",
	"recipe/detail.html",
	"guide/list.html",
	"guide/detail.html",
	"subscriber/status.html",
	"auth/login.html",
	"auth/register.html",
	"dashboard/overview.html",
	"dashboard/recipe_form.html",
	"dashboard/guide_form.html",
	"dashboard/subscribers.html",
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}
	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		panic(err)
	}

	for _, view := range views {
		files := make([]string, 0, len(layouts)+len(components)+1)
		files = append(files, layouts...)
		files = append(files, components...)
		files = append(files, templatesDir+"/views/"+view)
		r.AddFromFilesFuncs(view, templateFuncs, files...)
	}
	return r
}
