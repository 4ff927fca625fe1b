// Package template renders outbound email bodies.
//
// Supported variables:
//
//	{{login.link}}  the clickable verification URL
//	{{login.token}} the raw secret for manual entry
package template

import "strings"

const loginEmailBody = `<h1>Your Gnosis Login Link</h1>
<p>Click the link below to log in:</p>
<a href="{{login.link}}">Log in to Gnosis</a>
<p>If you cannot click the link, copy and paste this URL into your browser:</p>
<p>{{login.link}}</p>
<p>For manual entry, your token is: <mark>{{login.token}}</mark></p>`

// LoginEmail renders the magic-link delivery body.
func LoginEmail(link, token string) string {
	body := strings.ReplaceAll(loginEmailBody, "{{login.link}}", link)
	body = strings.ReplaceAll(body, "{{login.token}}", token)
	return body
}
