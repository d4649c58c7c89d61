// Package supabase stores calendar grants through the Supabase REST API.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"assistant_server/core/domain"
	"assistant_server/core/port/out"
	"assistant_server/pkg/httputil"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const accountColumns = "user_id,provider,access_token,refresh_token"

type accountRecord struct {
	UserID       uuid.UUID `json:"user_id"`
	Provider     string    `json:"provider"`
	AccessToken  *string   `json:"access_token"`
	RefreshToken *string   `json:"refresh_token"`
}

// AccountAdapter queries the accounts table with the service-role key.
type AccountAdapter struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

var (
	_ out.AccountRepository = (*AccountAdapter)(nil)
	_ out.AccountWriter     = (*AccountAdapter)(nil)
)

func NewAccountAdapter(baseURL, serviceKey string) *AccountAdapter {
	return &AccountAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     httputil.SupabaseClient(),
	}
}

func (a *AccountAdapter) GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*domain.UserCalendarAccount, error) {
	q := url.Values{}
	q.Set("select", accountColumns)
	q.Set("user_id", "eq."+userID.String())
	q.Set("provider", "eq."+provider)
	q.Set("limit", "1")

	req, err := http.NewRequest(http.MethodGet, a.baseURL+"/rest/v1/accounts?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	a.authorize(req)

	resp, err := httputil.Do(ctx, a.client, req)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read accounts response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query accounts: status %d", resp.StatusCode)
	}

	var records []accountRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	if len(records) == 0 {
		return nil, out.ErrAccountNotFound
	}

	r := records[0]
	acc := &domain.UserCalendarAccount{UserID: r.UserID, Provider: r.Provider}
	if r.AccessToken != nil {
		acc.AccessToken = *r.AccessToken
	}
	if r.RefreshToken != nil {
		acc.RefreshToken = *r.RefreshToken
	}
	return acc, nil
}

// Upsert merges on (user_id, provider). A grant without a refresh token
// leaves the stored one in place.
func (a *AccountAdapter) Upsert(ctx context.Context, userID uuid.UUID, provider string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("upsert account: empty token")
	}

	row := map[string]any{
		"user_id":      userID,
		"provider":     provider,
		"access_token": token.AccessToken,
	}
	if token.RefreshToken != "" {
		row["refresh_token"] = token.RefreshToken
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.baseURL+"/rest/v1/accounts?on_conflict=user_id,provider", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	a.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := httputil.Do(ctx, a.client, req)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("upsert account: status %d", resp.StatusCode)
	}
	return nil
}

func (a *AccountAdapter) authorize(req *http.Request) {
	req.Header.Set("apikey", a.serviceKey)
	req.Header.Set("Authorization", "Bearer "+a.serviceKey)
	req.Header.Set("Accept", "application/json")
}
