package ranking

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/zeebo/blake3"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mithrel/topviews/internal/db"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/logger"
	"github.com/mithrel/topviews/internal/sites"
)

// Cached serves repeated ranking queries from a session store.
// Namespace lookups always go to the wrapped source.
type Cached struct {
	next  Source
	store db.Store
}

// NewCached wraps next with store
func NewCached(next Source, store db.Store) *Cached {
	return &Cached{next: next, store: store}
}

func (c *Cached) log() *logger.Logger { return logger.Named("ranking.cache") }

// Rankings implements Source. A Fresh query skips the read but refreshes the entry.
func (c *Cached) Rankings(ctx context.Context, q Query) ([]RankEntry, error) {
	key := CacheKey(q)
	if !q.Fresh {
		payload, _, err := c.store.Get(ctx, key)
		switch {
		case err == nil:
			entries, derr := decodeEntries(payload)
			if derr == nil {
				c.log().Debug().Str("key", key[:12]).Int("entries", len(entries)).Msg("cache hit")
				return entries, nil
			}
			c.log().Warn().Err(derr).Str("key", key[:12]).Msg("cache payload unreadable")
		case !errors.Is(err, db.ErrNotFound):
			c.log().Warn().Err(perr.Wrap(err, perr.ErrorCodeCache, "cache read")).Msg("cache read failed")
		}
	}

	entries, err := c.next.Rankings(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, encodeEntries(entries)); err != nil {
		c.log().Warn().Err(perr.Wrap(err, perr.ErrorCodeCache, "cache write")).Msg("cache write failed")
	}
	return entries, nil
}

// NamespaceExcludes implements Source
func (c *Cached) NamespaceExcludes(ctx context.Context, project string, titles []string) ([]string, error) {
	return c.next.NamespaceExcludes(ctx, project, titles)
}

// CacheKey is a BLAKE3 digest of the fields that address a ranking
func CacheKey(q Query) string {
	h := blake3.New()
	h.Write([]byte(sites.Normalize(q.Project)))
	h.Write([]byte{0})
	h.Write([]byte(q.Platform))
	h.Write([]byte{0})
	h.Write([]byte(q.Date))
	return hex.EncodeToString(h.Sum(nil))
}

const (
	fieldEntry protowire.Number = 1
	fieldTitle protowire.Number = 1
	fieldViews protowire.Number = 2
)

// encodeEntries writes entries as repeated length-delimited messages
func encodeEntries(entries []RankEntry) []byte {
	var b []byte
	for _, e := range entries {
		var m []byte
		m = protowire.AppendTag(m, fieldTitle, protowire.BytesType)
		m = protowire.AppendString(m, e.Title)
		m = protowire.AppendTag(m, fieldViews, protowire.VarintType)
		m = protowire.AppendVarint(m, uint64(e.Views))

		b = protowire.AppendTag(b, fieldEntry, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	return b
}

func decodeEntries(b []byte) ([]RankEntry, error) {
	var out []RankEntry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		if num != fieldEntry || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		m, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		e, err := decodeEntry(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeEntry(m []byte) (RankEntry, error) {
	var e RankEntry
	for len(m) > 0 {
		num, typ, n := protowire.ConsumeTag(m)
		if n < 0 {
			return e, protowire.ParseError(n)
		}
		m = m[n:]
		switch {
		case num == fieldTitle && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(m)
			if n < 0 {
				return e, protowire.ParseError(n)
			}
			e.Title, m = s, m[n:]
		case num == fieldViews && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(m)
			if n < 0 {
				return e, protowire.ParseError(n)
			}
			e.Views, m = int64(v), m[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, m)
			if n < 0 {
				return e, protowire.ParseError(n)
			}
			m = m[n:]
		}
	}
	return e, nil
}
