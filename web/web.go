package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var files embed.FS

// 模板名
const (
	LoginPage = "login.html"
	MainPage  = "main.html"
)

// Templates 交给 hertz SetHTMLTemplate，c.HTML 按文件名渲染
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))
}

var funcs = template.FuncMap{
	"clock": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05")
	},
}
