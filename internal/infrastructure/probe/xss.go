package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	xssMarker  = "alert('xss')"
	xssPayload = "<script>" + xssMarker + "</script>"
)

type xssCheck struct {
	params []string
}

// NewReflectedXSSCheck sends a script payload through each param and parses the
// response for an executable script element carrying it. Escaped reflections are safe.
func NewReflectedXSSCheck(params []string) Check {
	return &xssCheck{params: params}
}

func (c *xssCheck) Name() string {
	return "xss"
}

func (c *xssCheck) Run(ctx context.Context, client *http.Client, target string) ([]*findings.Finding, error) {
	var out []*findings.Finding

	for _, param := range c.params {
		rawURL, err := resolve(target, "", url.Values{param: {xssPayload}})
		if err != nil {
			return out, err
		}
		resp, err := do(ctx, client, http.MethodGet, rawURL, nil, nil)
		if err != nil {
			return out, err
		}

		if containsInjectedScript(resp.body) {
			out = append(out, newFinding(
				"probe.xss",
				fmt.Sprintf("Reflected cross-site scripting in parameter %s", param),
				fmt.Sprintf("Payload %q was reflected as an executable script element", xssPayload),
				findings.SeverityHigh,
				"CWE-79",
				"?"+param,
				"https://owasp.org/www-community/attacks/xss/",
			))
		}
	}
	return out, nil
}

// containsInjectedScript reports whether the document has a <script> element whose text carries the marker
func containsInjectedScript(body string) bool {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return false
	}

	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode && strings.Contains(child.Data, xssMarker) {
					found = true
					return
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return found
}
