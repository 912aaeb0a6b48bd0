// Package banlist holds the administrative ban lists: banned IP addresses, account ids,
// Twitter ids and, optionally, Tor exit nodes.
package banlist

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	apperrors "github.com/questionit/api/internal/errors"
)

// ErrTorExitListUnavailable is returned when the Tor exit list endpoint answers with a
// status other than 200.
var ErrTorExitListUnavailable = apperrors.New("tor exit list unavailable")

// File is the on-disk shape of a ban list.
type File struct {
	IPs        []string `json:"ips"        yaml:"ips"`
	Accounts   []string `json:"accounts"   yaml:"accounts"`
	TwitterIDs []string `json:"twitterIds" yaml:"twitterIds"`
}

type set map[string]struct{}

func newSet(values []string) set {
	s := make(set, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

// Snapshot is an immutable view of the ban lists.
type Snapshot struct {
	ips        set
	accounts   set
	twitterIDs set
	torExits   set
}

// NewSnapshot builds a snapshot from a parsed file and a Tor exit list.
func NewSnapshot(file File, torExits []string) *Snapshot {
	return &Snapshot{
		ips:        newSet(file.IPs),
		accounts:   newSet(file.Accounts),
		twitterIDs: newSet(file.TwitterIDs),
		torExits:   newSet(torExits),
	}
}

// Parse decodes a ban list. YAML is used for .yaml and .yml paths, JSON with comments
// otherwise.
func Parse(path string, data []byte) (File, error) {
	var file File

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return File{}, apperrors.Wrap(err, "failed to parse ban list")
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return File{}, apperrors.Wrap(err, "failed to parse ban list")
		}
	}
	return file, nil
}

// LoadFile reads and parses the ban list at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided path
	if err != nil {
		return File{}, apperrors.Wrap(err, "failed to read ban list")
	}
	return Parse(path, data)
}

// ParseTorExitList reads one address per line, ignoring blanks, comments and anything
// that is not an IP address.
func ParseTorExitList(r io.Reader) ([]string, error) {
	var ips []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if net.ParseIP(line) == nil {
			continue
		}
		ips = append(ips, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to read tor exit list")
	}
	return ips, nil
}

// FetchTorExitList downloads the Tor bulk exit list from url.
func FetchTorExitList(ctx context.Context, client *http.Client, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build tor exit list request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch tor exit list")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrapf(ErrTorExitListUnavailable, "status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read tor exit list")
	}
	return ParseTorExitList(bytes.NewReader(body))
}

// Options configures where a Holder reloads its lists from.
type Options struct {
	Path       string
	TorEnabled bool
	TorURL     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Holder serves lookups from the current snapshot and swaps in new ones atomically.
// Before the first successful load nothing is banned.
type Holder struct {
	opts     Options
	snapshot atomic.Pointer[Snapshot]
}

// NewHolder creates a Holder with an empty snapshot.
func NewHolder(opts Options) *Holder {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	h := &Holder{opts: opts}
	h.snapshot.Store(NewSnapshot(File{}, nil))
	return h
}

// Store replaces the current snapshot.
func (h *Holder) Store(s *Snapshot) {
	h.snapshot.Store(s)
}

func (h *Holder) current() *Snapshot {
	return h.snapshot.Load()
}

// Reload re-reads the ban list file and, when enabled, the Tor exit list. A failed Tor
// fetch keeps the previous exit list; a failed file read keeps the whole snapshot.
func (h *Holder) Reload(ctx context.Context) error {
	file, err := LoadFile(h.opts.Path)
	if err != nil {
		return err
	}

	previous := h.current()
	torExits := previous.torExits
	if h.opts.TorEnabled {
		ips, err := FetchTorExitList(ctx, h.opts.HTTPClient, h.opts.TorURL)
		if err != nil {
			if h.opts.Logger != nil {
				h.opts.Logger.Warn("failed to refresh tor exit list, keeping previous one",
					slog.Any("error", err))
			}
		} else {
			torExits = newSet(ips)
		}
	}

	next := NewSnapshot(file, nil)
	next.torExits = torExits
	h.Store(next)

	if h.opts.Logger != nil {
		h.opts.Logger.Info("ban list loaded",
			slog.Int("ips", len(next.ips)),
			slog.Int("accounts", len(next.accounts)),
			slog.Int("twitter_ids", len(next.twitterIDs)),
			slog.Int("tor_exits", len(next.torExits)),
		)
	}
	return nil
}

// IsAccountBanned reports whether the account id is banned.
func (h *Holder) IsAccountBanned(accountID string) bool {
	return h.current().accounts.has(accountID)
}

// IsTwitterIDBanned reports whether the Twitter id is banned.
func (h *Holder) IsTwitterIDBanned(twitterID string) bool {
	return twitterID != "" && h.current().twitterIDs.has(twitterID)
}

// IsIPBanned reports whether ip is banned. With includeTor, Tor exit nodes count as banned.
func (h *Holder) IsIPBanned(ip string, includeTor bool) bool {
	s := h.current()
	if includeTor && s.torExits.has(ip) {
		return true
	}
	return s.ips.has(ip)
}
