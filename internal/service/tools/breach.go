package tools

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/pkg/retry"
)

const (
	pwnedRangeURL       = "https://api.pwnedpasswords.com/range/"
	hibpBreachedAccount = "https://haveibeenpwned.com/api/v3/breachedaccount/"
	defaultHTTPTimeout  = 10 * time.Second
)

type PasswordBreach struct {
	Breached bool   `json:"breached"`
	Count    int    `json:"count"`
	Message  string `json:"message"`
}

type EmailBreach struct {
	Breached bool     `json:"breached"`
	Breaches []string `json:"breaches"`
	Message  string   `json:"message"`
}

// BreachChecker queries the Have I Been Pwned APIs. Password checks use the
// anonymous k-anonymity range endpoint, email checks need an API key.
type BreachChecker struct {
	client  *http.Client
	retrier *retry.Retrier
	apiKey  string
}

func NewBreachChecker(apiKey string) *BreachChecker {
	return &BreachChecker{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		retrier: retry.NewRetrier(retry.NewDefaultConfig()),
		apiKey:  apiKey,
	}
}

// CheckPassword hashes the password with SHA-1 and sends only the first five
// hex characters upstream. The full hash never leaves the process.
func (b *BreachChecker) CheckPassword(ctx context.Context, password string) (PasswordBreach, error) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(fmt.Sprintf("%x", sum))
	prefix, suffix := digest[:5], digest[5:]

	var body string
	err := b.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pwnedRangeURL+prefix, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", core.BotUserAgent)

		resp, err := b.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to query range api: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		body = string(raw)
		return nil
	})
	if err != nil {
		return PasswordBreach{}, err
	}

	count := matchSuffix(body, suffix)
	result := PasswordBreach{Breached: count > 0, Count: count}
	if result.Breached {
		result.Message = fmt.Sprintf("This password appeared in %d known data breaches. Change it everywhere you use it.", count)
	} else {
		result.Message = "This password was not found in known breaches."
	}
	return result, nil
}

// matchSuffix scans the range response ("SUFFIX:COUNT" per line) for our
// hash suffix and returns the breach count, or 0 when absent.
func matchSuffix(body, suffix string) int {
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		candidate, countStr, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(candidate, suffix) {
			count, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil {
				return 0
			}
			return count
		}
	}
	return 0
}

// CheckEmail looks up an email address in the HIBP breach database. A 404
// from the API means the address is clean.
func (b *BreachChecker) CheckEmail(ctx context.Context, email string) (EmailBreach, error) {
	if b.apiKey == "" {
		return EmailBreach{}, fmt.Errorf("email breach checks require an HIBP api key")
	}

	var result EmailBreach
	err := b.retrier.Do(ctx, func() error {
		url := hibpBreachedAccount + email + "?truncateResponse=true"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", core.BotUserAgent)
		req.Header.Set("hibp-api-key", b.apiKey)

		resp, err := b.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to query hibp: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			var breaches []struct {
				Name string `json:"Name"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&breaches); err != nil {
				return fmt.Errorf("failed to decode breaches: %w", err)
			}
			names := make([]string, 0, len(breaches))
			for _, br := range breaches {
				names = append(names, br.Name)
			}
			result = EmailBreach{
				Breached: true,
				Breaches: names,
				Message:  fmt.Sprintf("This email appeared in %d known breaches.", len(names)),
			}
			return nil
		case http.StatusNotFound:
			result = EmailBreach{
				Breached: false,
				Breaches: []string{},
				Message:  "This email was not found in known breaches.",
			}
			return nil
		default:
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}
	})
	if err != nil {
		return EmailBreach{}, err
	}
	return result, nil
}
