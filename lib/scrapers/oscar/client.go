package oscar

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"
	"transfermap-backend/lib/restyutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/oscar")

type ClientOptions struct {
	// identification string sent with every request
	UserAgent string
	// minimum-interval rate limit shared by every request this client
	// makes, 0 disables
	RequestsPerMinute int
	// transport retry ceiling, 0 disables retries
	RetryMax int
	// base wait of the exponential retry backoff
	RetryBackoff time.Duration
	// directory for diagnostic page dumps on structural failure, empty
	// disables them
	DebugDir string
}

type Client struct {
	Http *resty.Client

	debug *restyutil.FilesystemOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetTimeout(time.Second * 30)

	if opts.RetryMax > 0 {
		httpClient.SetRetryCount(opts.RetryMax)
		httpClient.SetRetryWaitTime(opts.RetryBackoff)
		httpClient.SetRetryMaxWaitTime(opts.RetryBackoff * 16)
		httpClient.AddRetryCondition(func(res *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return res.StatusCode() == http.StatusTooManyRequests ||
				res.StatusCode() >= http.StatusInternalServerError
		})
		httpClient.SetRetryAfter(func(_ *resty.Client, res *resty.Response) (time.Duration, error) {
			// honor the server-specified wait on a rate-limit signal,
			// everything else gets the default exponential backoff
			if res != nil && res.StatusCode() == http.StatusTooManyRequests {
				seconds, err := strconv.Atoi(res.Header().Get("Retry-After"))
				if err == nil && seconds > 0 {
					return time.Duration(seconds) * time.Second, nil
				}
			}
			return 0, nil
		})
	}

	if opts.RequestsPerMinute > 0 {
		limiter := rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	restyutil.InstrumentClient(httpClient, tracer)

	c := &Client{Http: httpClient}
	if opts.DebugDir != "" {
		debug := restyutil.NewFilesystemOutput(opts.DebugDir)
		c.debug = &debug
	}
	return c, nil
}

// page is one fetched document along with the final URL it resolved to
// after redirects; subsequent form actions resolve relative to it.
type page struct {
	doc  *goquery.Document
	url  *url.URL
	body []byte
}

func (c *Client) getPage(ctx context.Context, link string) (page, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return page{}, err
	}
	return asPage(res)
}

func (c *Client) postForm(ctx context.Context, link string, data url.Values) (page, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormDataFromValues(data).
		Post(link)
	if err != nil {
		return page{}, err
	}
	return asPage(res)
}

func asPage(res *resty.Response) (page, error) {
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return page{}, fmt.Errorf("http status %d", res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return page{}, err
	}
	return page{
		doc:  doc,
		url:  res.RawResponse.Request.URL,
		body: res.Body(),
	}, nil
}

// dump saves the offending page for offline inspection. Structural
// failures cannot be retried, so the raw HTML is the only evidence of
// what the workflow actually served.
func (c *Client) dump(tag string, body []byte) {
	if c.debug == nil {
		return
	}
	c.debug.Write(fmt.Sprintf("debug_%s.html", tag), body)
}

// formFromPage models the page's form, dumping the page when there is
// none.
func (c *Client) formFromPage(p page, tag string) (*Form, error) {
	form, err := ParseForm(p.doc, p.url)
	if err != nil {
		c.dump(tag, p.body)
		return nil, fmt.Errorf("%s: %w", tag, err)
	}
	return form, nil
}
