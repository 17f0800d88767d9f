package convert

import (
	"strings"
	"testing"

	"richtag/config"
)

func TestBuildValues(t *testing.T) {
	tests := []struct {
		src      string
		wantName string
		wantDir  string
	}{
		{src: "page.html", wantName: "page", wantDir: ""},
		{src: "book/ch1/page.v2.html", wantName: "page.v2", wantDir: "book/ch1"},
	}
	for _, tt := range tests {
		v := buildValues(config.NameTemplateFieldName, tt.src, "id-1", ".txt", "ar")
		if v.Name != tt.wantName || v.Dir != tt.wantDir {
			t.Errorf("buildValues(%q) = %+v", tt.src, v)
		}
		if v.Context != string(config.NameTemplateFieldName) || v.ID != "id-1" || v.Ext != ".txt" || v.Lang != "ar" {
			t.Errorf("buildValues(%q) = %+v", tt.src, v)
		}
	}
}

func TestExpandTemplate(t *testing.T) {
	values := buildValues(config.NameTemplateFieldName, "docs/Intro Page.html", "0f8b", ".txt", "fa-IR")

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "simple text", template: "simple-text", want: "simple-text"},
		{name: "fields", template: "{{ .Lang }}/{{ .Name }}", want: "fa-IR/Intro Page"},
		{name: "sprig functions", template: `{{ .Name | lower | replace " " "_" }}-{{ .ID | upper }}`, want: "intro_page-0F8B"},
		{name: "directory", template: "{{ .Dir }}/{{ .Source }}", want: "docs/Intro Page.html"},
		{name: "context", template: "{{ .Context }}", want: "name_template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(config.NameTemplateFieldName, tt.template, values)
			if err != nil {
				t.Fatalf("expandTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandTemplate_Errors(t *testing.T) {
	_, err := expandTemplate(config.NameTemplateFieldName, "{{ .Name ", Values{})
	if err == nil || !strings.Contains(err.Error(), "name_template") {
		t.Errorf("expandTemplate() parse error = %v", err)
	}
	if _, err := expandTemplate(config.NameTemplateFieldName, "{{ .Missing }}", Values{}); err == nil {
		t.Error("expected execution error for unknown field")
	}
}
