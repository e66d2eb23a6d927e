package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/config"
	"feed-scraper/pkg/utils"
)

// Marker injected by the Sucuri cloud proxy bot challenge. The challenge
// page sets a cookie via inline JS; one extra round-trip with the cookie
// applied gets past it.
const sucuriChallengeMarker = "sucuri_cloudproxy_js"

// Authenticator performs the best-effort vendor login flow.
type Authenticator struct {
	client *Client
	cfg    config.AuthConfig
	log    *logrus.Entry
}

// NewAuthenticator returns an Authenticator over the shared client.
func NewAuthenticator(client *Client, cfg config.AuthConfig, log *logrus.Entry) *Authenticator {
	return &Authenticator{
		client: client,
		cfg:    cfg,
		log:    log.WithField("component", "auth"),
	}
}

// Login runs the configured login flow: scrape the form for hidden fields,
// submit credentials, handle the bot challenge round-trip, then verify the
// logged-in marker. A missing marker configuration means success is assumed.
func (a *Authenticator) Login(ctx context.Context) error {
	fields := make(map[string]string)

	if a.cfg.FindFormFields() {
		scraped, err := a.scrapeFormFields(ctx)
		if err != nil {
			a.log.Debugf("Login form scrape failed, submitting credentials only: %v", err)
		} else {
			for k, v := range scraped {
				fields[k] = v
			}
		}
	}
	for k, v := range a.cfg.AuthInfo {
		fields[k] = v
	}

	enc := EncodingDefault
	if a.cfg.APIAuth {
		enc = EncodingJSON
	}

	resp, err := a.client.Do(ctx, http.MethodPost, a.cfg.AuthURL, fields, enc)
	if err != nil {
		return fmt.Errorf("%w: submitting credentials: %v", utils.ErrAuthFailed, err)
	}

	if bytes.Contains(resp.Body, []byte(sucuriChallengeMarker)) {
		a.log.Info("Bot challenge detected, performing cookie round-trip")
		if _, err := a.client.Do(ctx, http.MethodGet, a.cfg.AuthURL, nil, EncodingDefault); err != nil {
			return fmt.Errorf("%w: challenge round-trip: %v", utils.ErrAuthFailed, err)
		}
		resp, err = a.client.Do(ctx, http.MethodPost, a.cfg.AuthURL, fields, enc)
		if err != nil {
			return fmt.Errorf("%w: resubmitting credentials: %v", utils.ErrAuthFailed, err)
		}
	}

	return a.verify(ctx, resp)
}

// verify searches for the configured logged-in marker. No marker configured
// means login is assumed successful.
func (a *Authenticator) verify(ctx context.Context, loginResp *Response) error {
	if a.cfg.CheckLoginText == "" {
		a.log.Info("Login submitted, no marker configured, assuming success")
		return nil
	}

	body := loginResp.String()
	if !strings.Contains(body, a.cfg.CheckLoginText) {
		// API logins often answer with a bare token; re-fetch the landing
		// page with session cookies applied before concluding failure.
		checkURL := a.cfg.AuthFormURL
		if checkURL == "" {
			checkURL = a.cfg.AuthURL
		}
		resp, err := a.client.Do(ctx, http.MethodGet, checkURL, nil, EncodingDefault)
		if err != nil {
			return fmt.Errorf("%w: fetching login check page: %v", utils.ErrAuthFailed, err)
		}
		body = resp.String()
	}

	if !strings.Contains(body, a.cfg.CheckLoginText) {
		return fmt.Errorf("%w: marker %q not found after login", utils.ErrAuthFailed, a.cfg.CheckLoginText)
	}
	a.log.Info("Login verified")
	return nil
}

// scrapeFormFields fetches the login form page and collects every named
// input's default value, so hidden CSRF tokens ride along with credentials.
func (a *Authenticator) scrapeFormFields(ctx context.Context) (map[string]string, error) {
	formURL := a.cfg.AuthFormURL
	if formURL == "" {
		formURL = a.cfg.AuthURL
	}

	resp, err := a.client.Do(ctx, http.MethodGet, formURL, nil, EncodingDefault)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login form page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing login form HTML: %v", utils.ErrParsing, err)
	}

	fields := make(map[string]string)
	doc.Find("form input[name], form select[name], form textarea[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if name == "" {
			return
		}
		value, _ := s.Attr("value")
		fields[name] = value
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no form fields found at %s", formURL)
	}
	return fields, nil
}
