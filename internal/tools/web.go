package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

var webClient = &http.Client{Timeout: 30 * time.Second}

func webFetch(ctx context.Context, args map[string]any) (string, error) {
	url := stringArg(args, "url", "")
	if url == "" {
		return "error: url is required", nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	req.Header.Set("User-Agent", "talos/1.0")
	resp, err := webClient.Do(req)
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("error: HTTP %d", resp.StatusCode), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}

	title, text := extractReadable(string(body))
	if len(text) > 4000 {
		text = text[:4000] + "\n...(truncated)"
	}
	return fmt.Sprintf("title: %s\n%s", title, text), nil
}

// extractReadable pulls the page title and visible text from an HTML
// document, skipping script, style, and other non-content elements.
func extractReadable(page string) (title, text string) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", strings.TrimSpace(page)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head", "nav", "footer":
				if n.Data == "head" {
					for c := n.FirstChild; c != nil; c = c.NextSibling {
						if c.Type == html.ElementNode && c.Data == "title" && c.FirstChild != nil {
							title = strings.TrimSpace(c.FirstChild.Data)
						}
					}
				}
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, strings.TrimSpace(b.String())
}
