package backend

import "testing"

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	const style = `<style type="text/css">p{}</style>` + "\n"

	tests := []struct {
		name string
		html string
		css  string
		want string
	}{
		{
			name: "empty css",
			html: "<html><head></head></html>",
			want: "<html><head></head></html>",
		},
		{
			name: "before head close",
			html: "<html><head><title>x</title></head><body></body></html>",
			css:  "p{}",
			want: "<html><head><title>x</title>" + style + "</head><body></body></html>",
		},
		{
			name: "upper case head",
			html: "<HTML><HEAD></HEAD></HTML>",
			css:  "p{}",
			want: "<HTML><HEAD>" + style + "</HEAD></HTML>",
		},
		{
			name: "after body open",
			html: `<body class="page">text</body>`,
			css:  "p{}",
			want: `<body class="page">` + style + "text</body>",
		},
		{
			name: "fragment",
			html: "<p>text</p>",
			css:  "p{}",
			want: style + "<p>text</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := injectCSS(tt.html, tt.css); got != tt.want {
				t.Errorf("injectCSS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeCSS(t *testing.T) {
	t.Parallel()

	if got := sanitizeCSS("a{}</style><script>x</script>"); got != `a{}<\/style><script>x<\/script>` {
		t.Errorf("sanitizeCSS() = %q", got)
	}
}
