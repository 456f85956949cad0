package apitest

import (
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/transactions"
)

type ownedTransaction struct {
	transactions.Transaction
	ownerID int64
}

// ledger holds every user's transactions.
type ledger struct {
	lock   sync.RWMutex
	byID   map[int64]*ownedTransaction
	nextID int64
}

func newLedger() *ledger {
	return &ledger{byID: make(map[int64]*ownedTransaction)}
}

func (l *ledger) Create(ownerID int64, in transactions.Input) transactions.Transaction {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.nextID++
	tx := &ownedTransaction{ownerID: ownerID}
	tx.ID = l.nextID
	tx.Category = transactions.DefaultCategory
	tx.CreatedAt = utils.Timestamp{Time: time.Now().UTC()}
	apply(&tx.Transaction, in)
	l.byID[tx.ID] = tx
	return tx.Transaction
}

func (l *ledger) Get(ownerID, id int64) (transactions.Transaction, bool) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	tx, ok := l.byID[id]
	if !ok || tx.ownerID != ownerID {
		return transactions.Transaction{}, false
	}
	return tx.Transaction, true
}

func (l *ledger) Update(ownerID, id int64, in transactions.Input) (transactions.Transaction, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()

	tx, ok := l.byID[id]
	if !ok || tx.ownerID != ownerID {
		return transactions.Transaction{}, false
	}
	apply(&tx.Transaction, in)
	tx.UpdatedAt = &utils.Timestamp{Time: time.Now().UTC()}
	return tx.Transaction, true
}

func (l *ledger) Delete(ownerID, id int64) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	tx, ok := l.byID[id]
	if !ok || tx.ownerID != ownerID {
		return false
	}
	delete(l.byID, id)
	return true
}

// List returns the owner's transactions, newest date first.
func (l *ledger) List(ownerID int64, txType transactions.Type, start, end utils.Date) []transactions.Transaction {
	l.lock.RLock()
	defer l.lock.RUnlock()

	list := make([]transactions.Transaction, 0)
	for _, tx := range l.byID {
		if tx.ownerID != ownerID {
			continue
		}
		if txType != "" && tx.Type != txType {
			continue
		}
		if !start.IsZero() && tx.Date.Before(start.Time) {
			continue
		}
		if !end.IsZero() && tx.Date.After(end.Time) {
			continue
		}
		list = append(list, tx.Transaction)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date.Time) {
			return list[i].ID > list[j].ID
		}
		return list[i].Date.After(list[j].Date.Time)
	})
	return list
}

func apply(tx *transactions.Transaction, in transactions.Input) {
	if in.Type != nil {
		tx.Type = *in.Type
	}
	if in.Subtype != nil {
		tx.Subtype = in.Subtype
	}
	if in.Description != nil {
		tx.Description = *in.Description
	}
	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}
	if in.Category != nil && *in.Category != "" {
		tx.Category = *in.Category
	}
	if in.Notes != nil {
		tx.Notes = in.Notes
	}
}
