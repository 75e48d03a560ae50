package playground

import (
	"reflect"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{
			name:     "no placeholders",
			template: "Hello world",
			want:     nil,
		},
		{
			name:     "empty template",
			template: "",
			want:     nil,
		},
		{
			name:     "single placeholder",
			template: "Hello {{name}}!",
			want:     []string{"name"},
		},
		{
			name:     "first appearance order",
			template: "{{a}} then {{b}} then {{a}} again",
			want:     []string{"a", "b"},
		},
		{
			name:     "underscore and digits",
			template: "{{var_1}} and {{v2}}",
			want:     []string{"var_1", "v2"},
		},
		{
			name:     "non-word characters not recognized",
			template: "{{a b}} {{a-b}} {{ spaced }} {{ok}}",
			want:     []string{"ok"},
		},
		{
			name:     "unclosed braces ignored",
			template: "{{open and }}closed{{",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVariables(tt.template)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractVariables(%q) = %v, want %v", tt.template, got, tt.want)
			}
		})
	}
}
