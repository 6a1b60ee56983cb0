package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// OTPEntry is a login code extracted from a service message.
type OTPEntry struct {
	MessageID int
	Code      string
	Text      string
	Date      time.Time
}

// OTPCache keeps the last N codes per account, newest first.
type OTPCache struct {
	data       map[string]*accountCodes
	mu         sync.RWMutex
	maxPerAcct int
	logger     zerolog.Logger
}

type accountCodes struct {
	entries *list.List
	set     map[int]*list.Element
}

func NewOTPCache(maxPerAccount int, logger zerolog.Logger) *OTPCache {
	if maxPerAccount <= 0 {
		maxPerAccount = 5
	}
	return &OTPCache{
		data:       make(map[string]*accountCodes),
		maxPerAcct: maxPerAccount,
		logger:     logger.With().Str("component", "otp_cache").Logger(),
	}
}

// Add stores entries for an account, ignoring message IDs already cached.
// Entries are expected oldest first.
func (c *OTPCache) Add(accountID string, entries ...OTPEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ac, exists := c.data[accountID]
	if !exists {
		ac = &accountCodes{
			entries: list.New(),
			set:     make(map[int]*list.Element),
		}
		c.data[accountID] = ac
	}

	for _, e := range entries {
		if _, found := ac.set[e.MessageID]; found {
			continue
		}
		ac.set[e.MessageID] = ac.entries.PushFront(e)
	}

	for ac.entries.Len() > c.maxPerAcct {
		oldest := ac.entries.Back()
		delete(ac.set, oldest.Value.(OTPEntry).MessageID)
		ac.entries.Remove(oldest)
	}
}

// Latest returns the newest entry for an account.
func (c *OTPCache) Latest(accountID string) (OTPEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ac, exists := c.data[accountID]
	if !exists || ac.entries.Len() == 0 {
		return OTPEntry{}, false
	}
	return ac.entries.Front().Value.(OTPEntry), true
}

// Recent returns up to count entries, newest first.
func (c *OTPCache) Recent(accountID string, count int) []OTPEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ac, exists := c.data[accountID]
	if !exists {
		return nil
	}

	result := make([]OTPEntry, 0, min(count, ac.entries.Len()))
	for e := ac.entries.Front(); e != nil && len(result) < count; e = e.Next() {
		result = append(result, e.Value.(OTPEntry))
	}
	return result
}

// Forget drops everything cached for an account.
func (c *OTPCache) Forget(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, accountID)
}
