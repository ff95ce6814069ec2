package email

import (
	"bytes"
	"encoding/base64"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"careerscope-engine/internal/scrape/util"
)

var (
	reHref  = regexp.MustCompile(`(?is)<a[^>]+href=["']([^"'#]+)["'][^>]*>(.*?)</a>`)
	reTags  = regexp.MustCompile(`(?is)<[^>]+>`)
	reNaked = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// parseRFC822 splits a raw message into message id, body text and subject.
// For multipart mail the HTML part is preferred for link harvesting, with
// the plain part appended so naked URLs still match.
func parseRFC822(raw []byte, fallbackSubject string) (messageID, bodyText, subject string) {
	if len(raw) == 0 {
		return "", "", fallbackSubject
	}

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		return "", string(raw), fallbackSubject
	}

	messageID = strings.TrimSpace(msg.Header.Get("Message-Id"))
	if messageID == "" {
		messageID = strings.TrimSpace(msg.Header.Get("Message-ID"))
	}

	subject = strings.TrimSpace(msg.Header.Get("Subject"))
	if subject == "" {
		subject = fallbackSubject
	}

	bodyRaw, _ := io.ReadAll(io.LimitReader(msg.Body, 5<<20))

	plain, htmlPart := extractMIMETextParts(msg.Header, bodyRaw)

	if htmlPart != "" {
		bodyText = htmlPart + "\n" + plain
	} else {
		bodyText = plain
	}
	if bodyText == "" {
		bodyText = string(bodyRaw)
	}

	return messageID, bodyText, subject
}

func extractMIMETextParts(h mail.Header, body []byte) (plain, htmlPart string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeTransferEncoding(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeTransferEncoding(body, cte)), ""
		}

		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		var bestPlain, bestHTML string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCT := p.Header.Get("Content-Type")
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))

			pMedia, _, _ := mime.ParseMediaType(partCT)
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, 3<<20))
			b = decodeTransferEncoding(b, partCTE)

			// nested multipart happens in digest mail
			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := extractMIMETextParts(mail.Header(p.Header), b)
				if len(ht) > len(bestHTML) {
					bestHTML = ht
				}
				if len(pl) > len(bestPlain) {
					bestPlain = pl
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(bestHTML) {
					bestHTML = string(b)
				}
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(bestPlain) {
					bestPlain = string(b)
				}
			}
		}

		return bestPlain, bestHTML
	}

	s := decodeTransferEncoding(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 5<<20))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 5<<20))
		return out
	default:
		return b
	}
}

func decodeRFC2047(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	dec := new(mime.WordDecoder)
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

// extractLinks harvests anchor hrefs (with their visible text as context)
// plus naked URLs, deduped by canonical URL.
func extractLinks(body string) (urls []string, contexts map[string]string) {
	contexts = make(map[string]string)

	textVersion := body
	low := strings.ToLower(body)
	if strings.Contains(low, "<html") || strings.Contains(low, "<a ") {
		textVersion = htmlToText(body)

		for _, m := range reHref.FindAllStringSubmatch(body, -1) {
			href := strings.TrimSpace(html.UnescapeString(m[1]))
			if href == "" {
				continue
			}
			txt := strings.TrimSpace(reTags.ReplaceAllString(m[2], " "))
			txt = strings.Join(strings.Fields(html.UnescapeString(txt)), " ")
			ltxt := strings.ToLower(txt)
			if strings.Contains(ltxt, "unsubscribe") ||
				strings.Contains(ltxt, "job alerts") ||
				strings.Contains(ltxt, "privacy") ||
				strings.Contains(ltxt, "terms") {
				continue
			}

			key := util.CanonicalizeURL(href)
			urls = append(urls, href)
			if len(txt) > len(contexts[key]) {
				contexts[key] = txt
			}
		}
	}

	for _, u := range reNaked.FindAllString(textVersion, -1) {
		urls = append(urls, u)
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimRight(strings.TrimSpace(u), ".,);:]\"'")
		if u == "" {
			continue
		}
		key := util.CanonicalizeURL(u)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}

	return out, contexts
}

func htmlToText(s string) string {
	s = reTags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// jobish allow/deny. A digest email is full of footer links; only keep
// URLs that look like a posting or apply page.
var jobURLHints = []string{
	"/jobs/",
	"/job/",
	"/career",
	"/careers",
	"greenhouse.io",
	"lever.co",
	"myworkdayjobs.com",
	"icims.com",
	"smartrecruiters.com",
	"ashbyhq.com",
	"breezy.hr",
	"jobvite.com",
	"applytojob.com",
	"remoteok.com/remote-jobs/",
}

func filterJobishURLs(urls []string, max int) []string {
	if max <= 0 {
		max = 10
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if util.IsObviousJunkURL(u) {
			continue
		}
		lu := strings.ToLower(u)
		ok := false
		for _, h := range jobURLHints {
			if strings.Contains(lu, h) {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, util.CanonicalizeURL(u))
		if len(out) >= max {
			break
		}
	}
	return out
}

var (
	// "Company is hiring for Title in Location"
	reHiringForIn = regexp.MustCompile(`^(.*?)\s+is\s+hiring\s+for\s+(.*?)\s+in\s+(.*)$`)
	// "Company - Title - Location"
	reCompanyTitleLocation = regexp.MustCompile(`^(.*?)\s*-\s*(.*?)\s*-\s*(.*)$`)
)

// parseFromSubject pulls company/title/location from common alert subject
// shapes; missing pieces come back empty.
func parseFromSubject(rawSubject string) (company, title, location string) {
	subj := strings.TrimSpace(decodeRFC2047(rawSubject))
	if subj == "" {
		return "", "", ""
	}

	for _, p := range []string{"Fwd:", "FW:", "Re:", "RE:"} {
		if strings.HasPrefix(strings.ToLower(subj), strings.ToLower(p)) {
			subj = strings.TrimSpace(subj[len(p):])
		}
	}

	if m := reHiringForIn.FindStringSubmatch(subj); len(m) == 4 {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), cleanLocation(m[3])
	}
	if m := reCompanyTitleLocation.FindStringSubmatch(subj); len(m) == 4 {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), cleanLocation(m[3])
	}

	return "", subj, ""
}

// parseFromContext splits anchor text like "Title · Company · Location".
func parseFromContext(s string) (company, title, location string) {
	parts := splitAny(s, []string{" · ", " • ", " - ", " | "})
	if len(parts) >= 1 {
		title = strings.TrimSpace(parts[0])
	}
	if len(parts) >= 2 {
		company = strings.TrimSpace(parts[1])
	}
	if len(parts) >= 3 {
		location = cleanLocation(parts[2])
	}
	return company, title, location
}

func splitAny(s string, seps []string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, sep := range seps {
		if strings.Contains(s, sep) {
			raw := strings.Split(s, sep)
			out := make([]string, 0, len(raw))
			for _, p := range raw {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		}
	}
	return []string{s}
}

func cleanLocation(loc string) string {
	loc = strings.TrimSpace(loc)
	loc = strings.TrimSuffix(loc, ".")
	loc = strings.TrimSuffix(loc, ",")
	loc = strings.TrimSpace(loc)

	// "Remote"/"Hybrid" is a work mode, not a place
	switch strings.ToLower(loc) {
	case "remote", "hybrid", "onsite", "on-site":
		return ""
	}
	return loc
}

func guessCompanyFromFrom(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}
	if i := strings.Index(from, "<"); i > 0 {
		name := strings.Trim(strings.TrimSpace(from[:i]), `"`)
		if name != "" {
			return name
		}
	}
	if at := strings.LastIndex(from, "@"); at >= 0 {
		d := strings.Trim(from[at+1:], "> ")
		parts := strings.Split(d, ".")
		if len(parts) > 0 && parts[0] != "" {
			return strings.ToUpper(parts[0][:1]) + parts[0][1:]
		}
	}
	return ""
}

func containsAnyCI(s string, any []string) bool {
	ls := strings.ToLower(s)
	for _, a := range any {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if strings.Contains(ls, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// makeSourceID dedupes a posting by message id + canonical URL when the
// message id exists, sender + subject + URL otherwise.
func makeSourceID(messageID, canonURL, subject, from string) string {
	if messageID != "" {
		return util.HashString("mid:" + messageID + "|url:" + canonURL)
	}
	return util.HashString("from:" + from + "|sub:" + subject + "|url:" + canonURL)
}
