package engine

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	fragmentPolicyOnce sync.Once
	fragmentPolicy     *bluemonday.Policy
)

// Fragment renders err as inline markup that can be embedded where the
// failing template or include would have been. The message and template
// text are escaped, and the result is restricted to the fragment's own
// elements.
func Fragment(err *Error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div class="pl-error pl-error-`)
	b.WriteString(err.Kind.String())
	b.WriteString(`">`)
	b.WriteString("<h1>Error in ")
	if err.Engine != "" {
		b.WriteString(html.EscapeString(err.Engine))
		b.WriteString(" ")
	}
	b.WriteString("template")
	if err.Key != "" {
		b.WriteString(" ")
		b.WriteString(html.EscapeString(err.Key))
	}
	b.WriteString("</h1>")
	if err.Err != nil {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(err.Err.Error()))
		b.WriteString("</p>")
	}
	if strings.TrimSpace(err.Template) != "" {
		b.WriteString("<pre><code>")
		b.WriteString(html.EscapeString(err.Template))
		b.WriteString("</code></pre>")
	}
	b.WriteString("</div>")

	return fragmentSanitizer().Sanitize(b.String())
}

func fragmentSanitizer() *bluemonday.Policy {
	fragmentPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("div", "h1", "p", "pre", "code")
		policy.AllowAttrs("class").
			Matching(regexp.MustCompile(`^pl-error( pl-error-[a-z-]+)?$`)).
			OnElements("div")
		fragmentPolicy = policy
	})
	return fragmentPolicy
}
