package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leaseguard/leaseguard/internal/domain"
	"github.com/leaseguard/leaseguard/internal/observability"
)

const (
	areaCodePath   = "/dtld/comm/getBeopjeongDongList.do"
	brokerListPath = "/dtld/broker/dtld_list_s001.do"

	// The portal reports result counts inside rendered HTML; exactly one
	// registration shows up as this marker.
	singleHitMarker = "총<b>1</b>건"
)

// Client resolves administrative codes and verifies broker licenses against
// the vworld portal.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *observability.Logger
}

// Config holds portal client configuration.
type Config struct {
	BaseURL string // Default: https://www.vworld.kr
	Timeout time.Duration
}

// NewClient creates a new portal client.
func NewClient(cfg Config, logger *observability.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.vworld.kr"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:     logger.WithComponent("registry"),
	}
}

// AreaCode is one entry of the portal's administrative code listings.
type AreaCode struct {
	Code string `json:"cd"`
	Name string `json:"nm"`
}

type areaCodeResponse struct {
	CodeList []AreaCode `json:"codeList"`
}

// areaCodes fetches the child administrative codes of the given code: city
// code to districts, district code to neighborhoods.
func (c *Client) areaCodes(ctx context.Context, code string) ([]AreaCode, error) {
	form := url.Values{
		"V_LAWD_CD": {code},
		"GUJESI_YN": {"Y"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+areaCodePath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.UpstreamError("failed to build area code request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.UpstreamError("area code lookup failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.UpstreamError(
			fmt.Sprintf("area code lookup failed: status %d", resp.StatusCode), nil)
	}

	var parsed areaCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.UpstreamError("malformed area code response", err)
	}

	return parsed.CodeList, nil
}

// resolveCodes turns a parsed address into its district and neighborhood
// codes by walking the portal's code listings.
func (c *Client) resolveCodes(ctx context.Context, parsed ParsedAddress) (districtCode, neighborhoodCode string, err error) {
	districts, err := c.areaCodes(ctx, parsed.CityCode)
	if err != nil {
		return "", "", err
	}

	for _, district := range districts {
		if parsed.District != "" && strings.Contains(district.Name, parsed.District) {
			districtCode = district.Code
			break
		}
	}
	if districtCode == "" {
		return "", "", domain.ValidationError(
			fmt.Sprintf("district not found: %s", parsed.District), nil)
	}

	neighborhoods, err := c.areaCodes(ctx, districtCode)
	if err != nil {
		return "", "", err
	}

	for _, neighborhood := range neighborhoods {
		if parsed.Neighborhood != "" && strings.Contains(neighborhood.Name, parsed.Neighborhood) {
			neighborhoodCode = neighborhood.Code
			break
		}
	}
	if neighborhoodCode == "" {
		return "", "", domain.ValidationError(
			fmt.Sprintf("neighborhood not found: %s", parsed.Neighborhood), nil)
	}

	return districtCode, neighborhoodCode, nil
}

// AdministrativeCode resolves a free-text address to its full hierarchical
// administrative code.
func (c *Client) AdministrativeCode(ctx context.Context, address string) (string, error) {
	parsed, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	_, neighborhoodCode, err := c.resolveCodes(ctx, parsed)
	if err != nil {
		return "", err
	}
	return neighborhoodCode, nil
}

// VerifyLicense checks that exactly one broker registration exists at the
// address's administrative code for the given office name and license number.
func (c *Client) VerifyLicense(ctx context.Context, address, officeName, licenseNumber string) (bool, error) {
	parsed, err := ParseAddress(address)
	if err != nil {
		return false, err
	}

	districtCode, neighborhoodCode, err := c.resolveCodes(ctx, parsed)
	if err != nil {
		return false, err
	}

	form := url.Values{
		"v_lawd_cd":          {neighborhoodCode},
		"pageIndex":          {"1"},
		"recordCountPerPage": {"10"},
		"v_sort":             {""},
		"v_sort_order":       {""},
		"GUJESI_YN":          {"Y"},
		"sggCd":              {""},
		"raRegno":            {""},
		"sysRegno":           {""},
		"sidoCd":             {parsed.CityCode},
		"sigunguCd":          {districtCode},
		"dongCd":             {neighborhoodCode},
		"svcCode":            {"117"},
		"v_cmp_nm":           {officeName},
		"v_ra_regno":         {licenseNumber},
		"v_rdealer_nm":       {""},
		"v_pos_gbn":          {""},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+brokerListPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, domain.UpstreamError("failed to build broker search request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+brokerListPath)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, domain.UpstreamError("broker search failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, domain.UpstreamError(
			fmt.Sprintf("broker search failed: status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, domain.UpstreamError("failed to read broker search response", err)
	}

	verified := strings.Contains(string(body), singleHitMarker)

	c.logger.Info().
		Str("office", officeName).
		Bool("verified", verified).
		Msg("broker license checked")

	return verified, nil
}
