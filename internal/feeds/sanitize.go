// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package feeds

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sanitizeDescription strips HTML from a leak description. Each link becomes
// its text followed by a [n] marker and its href is returned as a reference.
// Links pointing at the leak's own domain keep only their text.
func sanitizeDescription(desc, domain string) (string, []string) {
	if desc == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		return collapseSpace(desc), nil
	}

	var refs []string
	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		text := s.Text()
		if domain != "" {
			if u, err := url.Parse(href); err == nil && u.Host != "" && strings.Contains(u.Host, domain) {
				s.ReplaceWithHtml(html.EscapeString(text))
				return
			}
		}
		s.ReplaceWithHtml(html.EscapeString(fmt.Sprintf("%s [%d]", text, i+1)))
		refs = append(refs, href)
	})
	return collapseSpace(doc.Text()), refs
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
