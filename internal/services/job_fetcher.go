package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	minSelectorTextLength  = 200
	minDescriptionLength   = 100
	maxJobPageBytes        = 5 << 20
	noDescriptionFoundText = "Could not extract a job description from the provided URL. The page might not contain a job posting or may be protected."
)

// Site specific selectors first, generic containers last.
var jobDescriptionSelectors = []string{
	"[data-testid='job-description']",
	".job-description",
	".jobsearch-jobDescriptionText",
	".job-details",
	".description",
	".content",
	"article",
	".posting-content",
	".job-posting-description",
	"main",
}

var jobKeywords = []string{
	"responsibilities",
	"requirements",
	"qualifications",
	"experience",
	"skills",
	"role",
	"position",
	"job",
	"candidate",
	"we are looking for",
	"what you'll do",
	"what we offer",
	"about the role",
	"key responsibilities",
}

var boilerplateMarkers = []string{"contact us", "apply now", "privacy policy"}

type JobFetcher interface {
	FetchFromURL(ctx context.Context, rawURL string) (string, error)
}

type jobFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewJobFetcher(client *http.Client, userAgent string, timeout time.Duration, logger *zap.Logger) JobFetcher {
	return &jobFetcher{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

func (f *jobFetcher) FetchFromURL(ctx context.Context, rawURL string) (string, error) {
	target, err := ValidateJobURL(rawURL)
	if err != nil {
		return "", err
	}

	f.logger.Info("fetching job description", zap.String("url", target.String()))

	doc, err := f.fetch(ctx, target)
	if err != nil {
		f.logger.Warn("job page fetch failed", zap.String("url", target.String()), zap.Error(err))
		return "", err
	}

	description, source := ExtractJobDescription(doc)
	if utf8.RuneCountInString(description) < minDescriptionLength {
		f.logger.Info("no job description found",
			zap.String("url", target.String()),
			zap.Int("candidate_length", utf8.RuneCountInString(description)),
		)
		return "", newError(ErrorNoDescriptionFound, noDescriptionFoundText, nil)
	}

	f.logger.Info("extracted job description",
		zap.String("url", target.String()),
		zap.String("source", source),
		zap.Int("characters", utf8.RuneCountInString(description)),
	)

	return description, nil
}

// ValidateJobURL accepts only absolute http(s) URLs with a host.
func ValidateJobURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, newError(ErrorInvalidURL, "URL is required", nil)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, newError(ErrorInvalidURL, "Invalid URL format", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newError(ErrorInvalidURL, "URL must start with http:// or https://", nil)
	}
	if u.Host == "" {
		return nil, newError(ErrorInvalidURL, "URL must include a host", nil)
	}

	return u, nil
}

func (f *jobFetcher) fetch(ctx context.Context, target *url.URL) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, newError(ErrorInvalidURL, "Invalid URL format", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, newError(ErrorFetchTimeout, fmt.Sprintf("Timed out fetching the job page after %s", f.timeout), err)
		}
		return nil, newError(ErrorFetchFailed, "Failed to fetch the job page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Code:    ErrorFetchFailed,
			Message: fmt.Sprintf("Job page returned HTTP %d", resp.StatusCode),
			Status:  resp.StatusCode,
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxJobPageBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, newError(ErrorFetchTimeout, fmt.Sprintf("Timed out fetching the job page after %s", f.timeout), err)
		}
		return nil, newError(ErrorFetchFailed, "Failed to read the job page", err)
	}

	return doc, nil
}

// ExtractJobDescription runs the selector heuristics over a parsed page and
// reports which selector (or "body") produced the text.
func ExtractJobDescription(doc *goquery.Document) (string, string) {
	doc.Find("script, style, noscript, template").Remove()

	for _, selector := range jobDescriptionSelectors {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}

		text := Normalize(selection.Text())
		if utf8.RuneCountInString(text) > minSelectorTextLength && containsJobKeyword(text) {
			return text, selector
		}
	}

	body := Normalize(doc.Find("body").Text())
	if utf8.RuneCountInString(body) <= minSelectorTextLength {
		return "", "body"
	}

	var content []string
	inJobSection := false
	for _, sentence := range SplitSentences(body) {
		lower := strings.ToLower(sentence)
		if containsAny(lower, boilerplateMarkers) {
			if inJobSection {
				break
			}
			continue
		}
		if !inJobSection && containsJobKeyword(lower) {
			inJobSection = true
		}
		if inJobSection {
			content = append(content, sentence)
		}
	}

	return Normalize(strings.Join(content, " ")), "body"
}

func containsJobKeyword(text string) bool {
	return containsAny(strings.ToLower(text), jobKeywords)
}

func containsAny(lower string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
