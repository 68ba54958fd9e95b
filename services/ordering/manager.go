// Package ordering keeps every sibling collection of the content tree densely
// numbered 1..N. One generic Manager serves every relation; a Relation says
// which column scopes the siblings and how to attach a new item.
package ordering

import (
	"context"
	"fmt"
	"log"

	"coursehub/services/access"
	"coursehub/services/apperr"
	"coursehub/services/notify"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Relation describes one parent -> ordered children relationship.
type Relation[T any] struct {
	Name        string // for log lines and error messages
	ParentTable string
	ScopeColumn string
	// Attach sets the scope foreign key and position on an item.
	Attach func(item *T, scopeID uint, position int)
	// Path is the content path signalled after a successful mutation.
	Path func(scopeID uint) string
	// BeforeMove, when set, may veto moving item to another scope.
	BeforeMove func(tx *gorm.DB, item *T) error
}

type Manager[T any] struct {
	db       *gorm.DB
	rel      Relation[T]
	notifier notify.ChangeNotifier
}

func NewManager[T any](db *gorm.DB, rel Relation[T], notifier notify.ChangeNotifier) *Manager[T] {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Manager[T]{db: db, rel: rel, notifier: notifier}
}

type slot struct {
	ID       uint
	Position int
}

// Append inserts draft at the end of the scope. A storage failure is retried
// once with a fresh copy of the draft.
func (m *Manager[T]) Append(ctx context.Context, actor access.Actor, scopeID uint, draft *T) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	orig := *draft
	err := m.appendOnce(ctx, scopeID, draft)
	if apperr.KindOf(err) == apperr.StorageFailure {
		log.Printf("[ORDERING] append %s to scope %d failed, retrying: %v", m.rel.Name, scopeID, err)
		*draft = orig
		err = m.appendOnce(ctx, scopeID, draft)
	}
	if err != nil {
		return err
	}

	m.changed(ctx, scopeID)
	return nil
}

func (m *Manager[T]) appendOnce(ctx context.Context, scopeID uint, draft *T) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.lockParent(tx, scopeID); err != nil {
			return err
		}
		pos, err := m.maxPosition(tx, scopeID)
		if err != nil {
			return err
		}
		m.rel.Attach(draft, scopeID, pos+1)
		if err := tx.Create(draft).Error; err != nil {
			return apperr.Storage(err)
		}
		return nil
	})
	return apperr.Storage(err)
}

// Delete soft-deletes itemID and renumbers the survivors to their rank.
func (m *Manager[T]) Delete(ctx context.Context, actor access.Actor, scopeID, itemID uint) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.lockParent(tx, scopeID); err != nil {
			return err
		}
		if err := m.requireMember(tx, scopeID, itemID); err != nil {
			return err
		}
		if err := tx.Model(new(T)).Where("id = ?", itemID).Update("is_deleted", true).Error; err != nil {
			return apperr.Storage(err)
		}
		return m.renumber(tx, scopeID)
	})
	if err != nil {
		return apperr.Storage(err)
	}

	m.changed(ctx, scopeID)
	return nil
}

// Reorder assigns position i+1 to ids[i]. ids must be exactly the current
// membership of the scope.
func (m *Manager[T]) Reorder(ctx context.Context, actor access.Actor, scopeID uint, ids []uint) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	changed := false
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.lockParent(tx, scopeID); err != nil {
			return err
		}
		members, err := m.members(tx, scopeID)
		if err != nil {
			return err
		}
		if err := sameMembers(members, ids); err != nil {
			return err
		}
		if len(members) <= 1 {
			return nil
		}

		current := make(map[uint]int, len(members))
		for _, s := range members {
			current[s.ID] = s.Position
		}
		for i, id := range ids {
			if current[id] == i+1 {
				continue
			}
			if err := m.setPosition(tx, id, i+1); err != nil {
				return err
			}
			changed = true
		}
		return nil
	})
	if err != nil {
		return apperr.Storage(err)
	}

	if changed {
		m.changed(ctx, scopeID)
	}
	return nil
}

// Move takes itemID out of fromScope and appends it to toScope in one transaction.
func (m *Manager[T]) Move(ctx context.Context, actor access.Actor, fromScope, toScope, itemID uint) (*T, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if fromScope == toScope {
		return nil, apperr.New(apperr.InvalidInput, "%s is already in scope %d", m.rel.Name, toScope)
	}

	var item T
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, second := fromScope, toScope
		if second < first {
			first, second = second, first
		}
		if err := m.lockParent(tx, first); err != nil {
			return err
		}
		if err := m.lockParent(tx, second); err != nil {
			return err
		}
		if err := m.requireMember(tx, fromScope, itemID); err != nil {
			return err
		}
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			return apperr.Storage(err)
		}
		if m.rel.BeforeMove != nil {
			if err := m.rel.BeforeMove(tx, &item); err != nil {
				return err
			}
		}

		pos, err := m.maxPosition(tx, toScope)
		if err != nil {
			return err
		}
		m.rel.Attach(&item, toScope, pos+1)
		if err := tx.Save(&item).Error; err != nil {
			return apperr.Storage(err)
		}
		return m.renumber(tx, fromScope)
	})
	if err != nil {
		return nil, apperr.Storage(err)
	}

	m.changed(ctx, fromScope)
	m.changed(ctx, toScope)
	return &item, nil
}

// List returns the live members of the scope in position order.
func (m *Manager[T]) List(ctx context.Context, scopeID uint) ([]T, error) {
	var items []T
	err := m.db.WithContext(ctx).
		Where(m.rel.ScopeColumn+" = ? AND is_deleted = ?", scopeID, false).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return items, nil
}

// Get loads one live member of the scope.
func (m *Manager[T]) Get(ctx context.Context, scopeID, itemID uint) (*T, error) {
	var item T
	res := m.db.WithContext(ctx).
		Where("id = ? AND "+m.rel.ScopeColumn+" = ? AND is_deleted = ?", itemID, scopeID, false).
		Limit(1).
		Find(&item)
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "%s %d not found", m.rel.Name, itemID)
	}
	return &item, nil
}

func (m *Manager[T]) lockParent(tx *gorm.DB, scopeID uint) error {
	var parent struct{ ID uint }
	res := tx.Table(m.rel.ParentTable).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ? AND is_deleted = ? AND deleted_at IS NULL", scopeID, false).
		Limit(1).
		Find(&parent)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "%s scope %d not found", m.rel.Name, scopeID)
	}
	return nil
}

func (m *Manager[T]) requireMember(tx *gorm.DB, scopeID, itemID uint) error {
	var count int64
	err := tx.Model(new(T)).
		Where("id = ? AND "+m.rel.ScopeColumn+" = ? AND is_deleted = ?", itemID, scopeID, false).
		Count(&count).Error
	if err != nil {
		return apperr.Storage(err)
	}
	if count == 0 {
		return apperr.New(apperr.NotFound, "%s %d not found in scope %d", m.rel.Name, itemID, scopeID)
	}
	return nil
}

func (m *Manager[T]) maxPosition(tx *gorm.DB, scopeID uint) (int, error) {
	var pos int
	err := tx.Model(new(T)).
		Where(m.rel.ScopeColumn+" = ? AND is_deleted = ?", scopeID, false).
		Select("COALESCE(MAX(position), 0)").
		Scan(&pos).Error
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return pos, nil
}

func (m *Manager[T]) members(tx *gorm.DB, scopeID uint) ([]slot, error) {
	var slots []slot
	err := tx.Model(new(T)).
		Select("id, position").
		Where(m.rel.ScopeColumn+" = ? AND is_deleted = ?", scopeID, false).
		Order("position asc, id asc").
		Scan(&slots).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return slots, nil
}

// renumber rewrites every survivor to its rank in the current order, which
// also repairs gaps or duplicates left by earlier writes.
func (m *Manager[T]) renumber(tx *gorm.DB, scopeID uint) error {
	slots, err := m.members(tx, scopeID)
	if err != nil {
		return err
	}
	for i, s := range slots {
		if s.Position == i+1 {
			continue
		}
		if err := m.setPosition(tx, s.ID, i+1); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager[T]) setPosition(tx *gorm.DB, id uint, position int) error {
	if err := tx.Model(new(T)).Where("id = ?", id).Update("position", position).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (m *Manager[T]) changed(ctx context.Context, scopeID uint) {
	if m.rel.Path == nil {
		return
	}
	path := m.rel.Path(scopeID)
	if err := m.notifier.Changed(ctx, path); err != nil {
		log.Printf("[ORDERING] change notification for %s failed: %v", path, err)
	}
}

// sameMembers checks ids is a permutation of the member set.
func sameMembers(members []slot, ids []uint) error {
	if len(ids) != len(members) {
		return apperr.New(apperr.InvalidInput, "expected %d ids, got %d", len(members), len(ids))
	}
	want := make(map[uint]bool, len(members))
	for _, s := range members {
		want[s.ID] = true
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return apperr.New(apperr.InvalidInput, "duplicate id %d", id)
		}
		if !want[id] {
			return apperr.New(apperr.InvalidInput, "id %d is not a member of this scope", id)
		}
		seen[id] = true
	}
	return nil
}

func pathf(format string) func(uint) string {
	return func(id uint) string { return fmt.Sprintf(format, id) }
}
