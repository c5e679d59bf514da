package main

import (
	"embed"
	"html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var tmplFS embed.FS

var (
	indexTmpl = template.Must(template.ParseFS(tmplFS, "templates/index.html"))
	swTmpl    = texttemplate.Must(texttemplate.ParseFS(tmplFS, "templates/sw.js"))
)
