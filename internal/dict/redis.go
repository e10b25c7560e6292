package dict

import (
	"context"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// UserTag is assigned to user words stored without an explicit tag.
const UserTag = "USER"

// RedisStore keeps user dictionary words in one redis set per language.
// Members are encoded as "form\tlemma\ttag".
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "gramlint:userdict:"}
}

func (s *RedisStore) key(lang string) string {
	return s.prefix + lang
}

// Add inserts entries for lang.
func (s *RedisStore) Add(ctx context.Context, lang string, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	members := make([]any, len(entries))
	for i, e := range entries {
		members[i] = encodeMember(e)
	}
	return s.client.SAdd(ctx, s.key(lang), members...).Err()
}

// Remove deletes every entry of lang whose form is listed.
func (s *RedisStore) Remove(ctx context.Context, lang string, forms ...string) (int, error) {
	all, err := s.client.SMembers(ctx, s.key(lang)).Result()
	if err != nil {
		return 0, err
	}
	drop := make(map[string]struct{}, len(forms))
	for _, f := range forms {
		drop[f] = struct{}{}
	}
	var members []any
	for _, m := range all {
		if _, ok := drop[decodeMember(m).Form]; ok {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return 0, nil
	}
	n, err := s.client.SRem(ctx, s.key(lang), members...).Result()
	return int(n), err
}

// List returns all entries of lang sorted by form.
func (s *RedisStore) List(ctx context.Context, lang string) ([]Entry, error) {
	all, err := s.client.SMembers(ctx, s.key(lang)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(all))
	for _, m := range all {
		out = append(out, decodeMember(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Form != out[j].Form {
			return out[i].Form < out[j].Form
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

// Load reads the user words of lang into a Map, once, at startup.
func (s *RedisStore) Load(ctx context.Context, lang string) (*Map, error) {
	entries, err := s.List(ctx, lang)
	if err != nil {
		return nil, err
	}
	m := NewMap()
	for _, e := range entries {
		m.Add(e)
	}
	return m, nil
}

func encodeMember(e Entry) string {
	if e.Lemma == "" && e.Tag == "" {
		return e.Form
	}
	return e.Form + "\t" + e.Lemma + "\t" + e.Tag
}

func decodeMember(m string) Entry {
	parts := strings.SplitN(m, "\t", 3)
	e := Entry{Form: parts[0], Lemma: parts[0], Tag: UserTag}
	if len(parts) > 1 && parts[1] != "" {
		e.Lemma = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		e.Tag = parts[2]
	}
	return e
}
