package security

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"
)

const (
	pwnedBaseURL  = "https://api.pwnedpasswords.com"
	pwnedTimeout  = 5 * time.Second
	rangeCacheTTL = 30 * time.Minute
)

// PwnedClient checks passwords against a public breach database using its
// k-anonymity range API. Only the first 5 characters of the SHA-1 hash ever
// leave the process, the suffix match happens locally
type PwnedClient struct {
	BaseURL string
	Client  *http.Client

	cache *ttlcache.Cache
}

func NewPwnedClient() *PwnedClient {
	cache := ttlcache.NewCache()
	cache.SkipTTLExtensionOnHit(true)

	return &PwnedClient{
		BaseURL: pwnedBaseURL,
		Client: &http.Client{
			Timeout: pwnedTimeout,
		},
		cache: cache,
	}
}

// CheckLeaked reports whether p appears in the breach database and how many
// times. The check is advisory only: any network, HTTP or parsing failure is
// swallowed and reported as not leaked, so an unreachable third party never
// blocks a signup
func (pc *PwnedClient) CheckLeaked(ctx context.Context, p string) (leaked bool, count int) {
	sum := sha1.Sum([]byte(p))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))

	prefix := hash[:5]
	suffix := hash[5:]

	body, err := pc.rangeFor(ctx, prefix)
	if err != nil {
		zap.L().Warn("Breach range lookup failed, failing open", zap.Error(err))
		return false, 0
	}

	// The service returns SUFFIX:COUNT lines. Both \r\n and \n endings
	// show up in the wild
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		entry := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(entry) != 2 {
			continue
		}

		if strings.EqualFold(entry[0], suffix) {
			n, err := strconv.Atoi(strings.TrimSpace(entry[1]))
			if err != nil {
				zap.L().Warn("Unparsable breach count, failing open", zap.String("line", line))
				return false, 0
			}

			return true, n
		}
	}

	return false, 0
}

func (pc *PwnedClient) rangeFor(ctx context.Context, prefix string) (string, error) {
	if cached, err := pc.cache.Get(prefix); err == nil {
		return cached.(string), nil
	}

	var body string

	err := requests.
		URL(pc.BaseURL + "/range/" + prefix).
		Client(pc.Client).
		ToString(&body).
		Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("range query failed, %w", err)
	}

	pc.cache.SetWithTTL(prefix, body, rangeCacheTTL)

	return body, nil
}
