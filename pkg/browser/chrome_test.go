package browser

import (
	"testing"

	"github.com/chromedp/cdproto/cdp"
)

func TestChromeElementAttribute(t *testing.T) {
	el := chromeElement{node: &cdp.Node{
		Attributes: []string{"src", "https://cdn.example.com/a.jpg", "alt", "", "loading", "lazy"},
	}}

	tests := []struct {
		name    string
		attr    string
		want    string
		present bool
	}{
		{"present", "src", "https://cdn.example.com/a.jpg", true},
		{"present but empty", "alt", "", true},
		{"last pair", "loading", "lazy", true},
		{"absent", "srcset", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := el.Attribute(tt.attr)
			if got != tt.want || ok != tt.present {
				t.Errorf("Attribute(%q) = (%q, %v), want (%q, %v)", tt.attr, got, ok, tt.want, tt.present)
			}
		})
	}
}

func TestChromeElementOddAttributes(t *testing.T) {
	// A trailing name with no value must not panic or match
	el := chromeElement{node: &cdp.Node{Attributes: []string{"src"}}}
	if _, ok := el.Attribute("src"); ok {
		t.Error("Dangling attribute name should not report present")
	}
}
