package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"spesa/internal/analytics"
	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/ports"
)

var (
	ErrHydrating    = errors.New("ledger is hydrating")
	ErrListNotFound = errors.New("list not found")
)

// LedgerServiceConfig holds the session settings.
type LedgerServiceConfig struct {
	// Debounce is the trailing persist delay (default 1.5s).
	Debounce time.Duration
	// Key names the stored document in save notifications.
	Key string
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// LedgerService owns the in-memory ledger of the active session. Every
// mutation works on a clone that replaces the current ledger, so a snapshot
// returned by Ledger is never modified afterwards.
type LedgerService struct {
	store     ports.LedgerStore
	publisher ports.SavePublisher
	logger    *log.Logger
	persist   *PersistScheduler
	key       string
	now       func() time.Time

	mu          sync.Mutex
	ledger      *core.Ledger
	state       SessionState
	lastSaveErr error

	events notifier
}

// NewLedgerService creates a service with an empty ledger and no session.
// publisher may be nil.
func NewLedgerService(store ports.LedgerStore, publisher ports.SavePublisher, logger *log.Logger, cfg LedgerServiceConfig) *LedgerService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	s := &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		key:       cfg.Key,
		now:       cfg.Now,
		ledger:    core.NewLedger(),
		state:     StateUninitialized,
	}
	s.persist = NewPersistScheduler(cfg.Debounce, s.save)
	return s
}

// Subscribe registers fn for ledger events and returns its cancel func.
func (s *LedgerService) Subscribe(fn func(Event)) func() {
	return s.events.subscribe(fn)
}

// Ledger returns the current snapshot. Callers must not modify it.
func (s *LedgerService) Ledger() *core.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger
}

// State returns the session lifecycle state.
func (s *LedgerService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastSaveError returns the error of the most recent failed save, or nil
// once a later save succeeds.
func (s *LedgerService) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// Hydrate starts a session by loading the stored ledger. Load failures are
// logged and the session starts empty. Pending saves are dropped so stale
// state never overwrites what is being fetched.
func (s *LedgerService) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateHydrating {
		s.mu.Unlock()
		return ErrHydrating
	}
	s.state = StateHydrating
	s.mu.Unlock()
	s.persist.Cancel()

	l, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load ledger, starting empty",
			log.NewFields().WithOperation(log.OpHydrate).WithError(err).ToSlice()...)
		l = nil
	}
	if l == nil {
		l = core.NewLedger()
	}
	l.Normalize()

	s.mu.Lock()
	s.ledger = l
	s.state = StateReady
	s.lastSaveErr = nil
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Ledger hydrated",
		log.NewFields().WithOperation(log.OpHydrate).WithLedgerSize(len(l.Lists), l.ItemCount()).ToSlice()...)
	s.events.emit(Event{Kind: EventHydrated, At: s.now()})
	return nil
}

// Logout writes any pending change, then clears the session. The returned
// error is the final save's.
func (s *LedgerService) Logout(ctx context.Context) error {
	err := s.persist.Flush(ctx)
	s.persist.Cancel()

	s.mu.Lock()
	s.ledger = core.NewLedger()
	s.state = StateCleared
	s.lastSaveErr = nil
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Session cleared", log.FieldOperation, log.OpLogout)
	s.events.emit(Event{Kind: EventCleared, At: s.now()})
	return err
}

// Flush saves a pending change immediately.
func (s *LedgerService) Flush(ctx context.Context) error {
	return s.persist.Flush(ctx)
}

// Close flushes and stops scheduling saves.
func (s *LedgerService) Close(ctx context.Context) error {
	return s.persist.Stop(ctx)
}

func (s *LedgerService) save(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.ledger
	s.mu.Unlock()

	fields := log.NewFields().WithOperation(log.OpSave).WithLedgerSize(len(snapshot.Lists), snapshot.ItemCount())
	if err := s.store.Save(ctx, snapshot); err != nil {
		s.mu.Lock()
		s.lastSaveErr = err
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Failed to save ledger", fields.WithError(err).ToSlice()...)
		s.events.emit(Event{Kind: EventSaveFailed, Err: err, At: s.now()})
		return fmt.Errorf("save ledger: %w", err)
	}

	s.mu.Lock()
	s.lastSaveErr = nil
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "Ledger saved", fields.ToSlice()...)
	s.events.emit(Event{Kind: EventSaved, At: s.now()})

	if s.publisher != nil {
		if err := s.publisher.PublishLedgerSaved(ctx, s.key, len(snapshot.Lists), snapshot.ItemCount()); err != nil {
			// The document is saved; the mirror catches up on its own interval.
			s.logger.WarnContext(ctx, "Failed to publish ledger saved event",
				log.NewFields().WithOperation(log.OpPublish).WithError(err).ToSlice()...)
		}
	}
	return nil
}

// mutate applies fn to a clone of the ledger and swaps it in when fn reports
// a change. Changes are announced and persisted once the lock is released.
func (s *LedgerService) mutate(op string, fn func(l *core.Ledger) bool) bool {
	s.mu.Lock()
	next := s.ledger.Clone()
	changed := fn(next)
	ready := false
	if changed {
		s.ledger = next
		ready = s.state == StateReady
	}
	s.mu.Unlock()

	if !changed {
		return false
	}
	s.logger.Debug("Ledger changed", log.FieldOperation, op)
	s.events.emit(Event{Kind: EventChanged, Op: op, At: s.now()})
	if ready {
		s.persist.Schedule()
	}
	return true
}

// CreateList returns the id of the list for date's calendar day, creating
// the list when it does not exist yet.
func (s *LedgerService) CreateList(date time.Time) string {
	id := core.DayKey(date)
	s.mutate("create_list", func(l *core.Ledger) bool {
		_, created := ensureList(l, date)
		return created
	})
	return id
}

// UpdateList replaces the list with the given id. Unknown ids are ignored.
func (s *LedgerService) UpdateList(id string, list core.ShoppingList) error {
	list = list.Clone()
	list.ID = id
	if list.Items == nil {
		list.Items = []core.ShoppingItem{}
	}
	single := core.Ledger{Lists: []core.ShoppingList{list}}
	if err := single.Validate(); err != nil {
		return err
	}
	var err error
	s.mutate("update_list", func(l *core.Ledger) bool {
		i := l.ListIndex(id)
		if i < 0 {
			return false
		}
		l.Lists[i] = list
		// A new CreatedAt must not land on another list's day.
		if err = l.Validate(); err != nil {
			return false
		}
		return true
	})
	return err
}

// DeleteList removes the list with the given id, if any.
func (s *LedgerService) DeleteList(id string) {
	s.mutate("delete_list", func(l *core.Ledger) bool {
		i := l.ListIndex(id)
		if i < 0 {
			return false
		}
		l.Lists = append(l.Lists[:i], l.Lists[i+1:]...)
		return true
	})
}

// AddItem appends a pending item to a list. Missing unit and category are
// taken from the item's master info, then from the defaults.
func (s *LedgerService) AddItem(listID string, item core.ShoppingItem) (string, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return "", core.ErrEmptyName
	}
	if err := item.Validate(); err != nil {
		return "", err
	}
	if item.Status == "" {
		item.Status = core.StatusPending
	}
	if item.Amount <= 0 {
		item.Amount = 1
	}

	var id string
	found := false
	s.mutate("add_item", func(l *core.Ledger) bool {
		i := l.ListIndex(listID)
		if i < 0 {
			return false
		}
		found = true
		item.Unit, item.Category = masterDefaults(l, item.Name, item.Unit, item.Category)
		item.ID = uniqueItemID(l.Lists[i], token(s.now()))
		id = item.ID
		l.Lists[i].Items = append(l.Lists[i].Items, item.Clone())
		foldItemInfo(l, item.Name, item.Unit, item.Category)
		return true
	})
	if !found {
		return "", ErrListNotFound
	}
	s.logger.Debug("Item added", log.NewFields().WithOperation("add_item").WithItem(listID, id).ToSlice()...)
	return id, nil
}

// UpdateItem merges patch into the matching item. Unknown ids are ignored.
func (s *LedgerService) UpdateItem(listID, itemID string, patch ItemPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	s.mutate("update_item", func(l *core.Ledger) bool {
		i := l.ListIndex(listID)
		if i < 0 {
			return false
		}
		j := l.Lists[i].ItemIndex(itemID)
		if j < 0 {
			return false
		}
		patch.Apply(&l.Lists[i].Items[j])
		return true
	})
	return nil
}

// DeleteItem removes an item from a list. Unknown ids are ignored.
func (s *LedgerService) DeleteItem(listID, itemID string) {
	s.mutate("delete_item", func(l *core.Ledger) bool {
		i := l.ListIndex(listID)
		if i < 0 {
			return false
		}
		j := l.Lists[i].ItemIndex(itemID)
		if j < 0 {
			return false
		}
		items := l.Lists[i].Items
		l.Lists[i].Items = append(items[:j], items[j+1:]...)
		return true
	})
}

// AddItemFromSuggestion puts a suggested item on today's list, seeding the
// amount and estimated price from the latest purchase. It returns false when
// a pending item with the same name and unit is already on today's list.
func (s *LedgerService) AddItemFromSuggestion(sug core.Suggestion) bool {
	today := s.now()
	inserted := false
	s.mutate("add_suggestion", func(l *core.Ledger) bool {
		i, created := ensureList(l, today)
		for _, it := range l.Lists[i].Items {
			if it.Status == core.StatusPending && it.Name == sug.Name && it.Unit == sug.Unit {
				return created
			}
		}

		latest := analytics.LatestPurchaseInfo(l, sug.Name, sug.Unit)
		amount := 1.0
		if latest.Found && latest.Quantity > 0 {
			amount = latest.Quantity
		}
		unit, category := masterDefaults(l, sug.Name, sug.Unit, sug.Category)
		item := core.ShoppingItem{
			ID:       uniqueItemID(l.Lists[i], token(today)),
			Name:     sug.Name,
			Amount:   amount,
			Unit:     unit,
			Category: category,
			Status:   core.StatusPending,
		}
		if latest.Found {
			item.EstimatedPrice = core.Float(latest.PricePerUnit * amount)
		}
		l.Lists[i].Items = append(l.Lists[i].Items, item)
		inserted = true
		return true
	})
	return inserted
}

// AddOcrPurchase records a scanned receipt as bought items on the list for
// the receipt's date and returns that list's display name. An unparseable
// date yields core.ErrInvalidDate and changes nothing.
func (s *LedgerService) AddOcrPurchase(batch core.PurchaseBatch, paymentMethod string, paymentStatus core.PaymentStatus, vendorName string) (string, error) {
	date, err := core.ParseLocalDate(batch.Date)
	if err != nil {
		return "", err
	}
	for _, line := range batch.Items {
		if line.Price < 0 {
			return "", fmt.Errorf("%s: %w", line.Name, core.ErrNegativePrice)
		}
		if line.Quantity < 0 {
			return "", fmt.Errorf("%s: %w", line.Name, core.ErrNegativeQuantity)
		}
	}
	if paymentStatus == "" {
		paymentStatus = core.PaymentPaid
	}

	now := s.now()
	var listName string
	s.mutate("add_ocr_purchase", func(l *core.Ledger) bool {
		var vendorID *string
		if strings.TrimSpace(vendorName) != "" {
			vendorID = core.String(findOrCreateVendor(l, vendorName, now))
		}

		i, _ := ensureList(l, date)
		list := l.Lists[i]
		base := token(now)
		for n, line := range batch.Items {
			name := strings.TrimSpace(line.Name)
			if name == "" {
				continue
			}
			unit := line.Unit
			category := line.SuggestedCategory
			unit, category = masterDefaults(l, name, unit, category)

			list.Items = append(list.Items, core.ShoppingItem{
				ID:              uniqueItemID(list, base+"-"+strconv.Itoa(n)),
				Name:            name,
				Amount:          line.Quantity,
				Unit:            unit,
				Category:        category,
				Status:          core.StatusBought,
				PurchasedAmount: core.Float(line.Quantity),
				PaidPrice:       core.Float(line.Price),
				PaymentStatus:   paymentStatus,
				PaymentMethod:   paymentMethod,
				VendorID:        cloneString(vendorID),
			})
			foldItemInfo(l, name, unit, category)
			if vendorID != nil {
				l.CategoryVendorMap[category] = *vendorID
			}
		}
		l.Lists[i] = list
		listName = list.Name
		return true
	})
	return listName, nil
}

// AddVendor creates a vendor and returns it.
func (s *LedgerService) AddVendor(name string) (core.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Vendor{}, core.ErrEmptyName
	}
	var v core.Vendor
	s.mutate("add_vendor", func(l *core.Ledger) bool {
		v = core.Vendor{ID: uniqueVendorID(l, s.now()), Name: name}
		l.Vendors = append(l.Vendors, v)
		return true
	})
	return v, nil
}

// UpdateVendor renames a vendor. Unknown ids are ignored.
func (s *LedgerService) UpdateVendor(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	s.mutate("update_vendor", func(l *core.Ledger) bool {
		i := l.VendorIndex(id)
		if i < 0 || l.Vendors[i].Name == name {
			return false
		}
		l.Vendors[i].Name = name
		return true
	})
	return nil
}

// DeleteVendor removes a vendor and clears every reference to it. Items
// that pointed at it are kept without a vendor.
func (s *LedgerService) DeleteVendor(id string) {
	unlinked := 0
	deleted := s.mutate("delete_vendor", func(l *core.Ledger) bool {
		i := l.VendorIndex(id)
		if i < 0 {
			return false
		}
		l.Vendors = append(l.Vendors[:i], l.Vendors[i+1:]...)
		for li := range l.Lists {
			for ii := range l.Lists[li].Items {
				it := &l.Lists[li].Items[ii]
				if it.VendorID != nil && *it.VendorID == id {
					it.VendorID = nil
					unlinked++
				}
			}
		}
		for category, vendorID := range l.CategoryVendorMap {
			if vendorID == id {
				delete(l.CategoryVendorMap, category)
			}
		}
		return true
	})
	if deleted {
		s.logger.Info("Vendor deleted", log.FieldVendorID, id, "unlinked_items", unlinked)
	}
}

// FindOrCreateVendor returns the id of the vendor whose name matches
// case-insensitively, creating one when none does.
func (s *LedgerService) FindOrCreateVendor(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", core.ErrEmptyName
	}
	var id string
	s.mutate("find_or_create_vendor", func(l *core.Ledger) bool {
		before := len(l.Vendors)
		id = findOrCreateVendor(l, name, s.now())
		return len(l.Vendors) != before
	})
	return id, nil
}

// UpdateCategoryVendorMap sets the preferred vendor for a category. An empty
// vendor id removes the preference.
func (s *LedgerService) UpdateCategoryVendorMap(category, vendorID string) {
	s.mutate("update_category_vendor", func(l *core.Ledger) bool {
		current, ok := l.CategoryVendorMap[category]
		if vendorID == "" {
			if !ok {
				return false
			}
			delete(l.CategoryVendorMap, category)
			return true
		}
		if ok && current == vendorID {
			return false
		}
		l.CategoryVendorMap[category] = vendorID
		return true
	})
}

// MasterItemUpdate is the new identity of a master item.
type MasterItemUpdate struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
}

// UpdateMasterItem rewrites every item recorded as (originalName,
// originalUnit) across all lists and moves its master info. The old info key
// is removed only when the name changes.
func (s *LedgerService) UpdateMasterItem(originalName, originalUnit string, upd MasterItemUpdate) error {
	upd.Name = strings.TrimSpace(upd.Name)
	if upd.Name == "" {
		return core.ErrEmptyName
	}
	if upd.Unit == "" {
		upd.Unit = originalUnit
	}

	s.mutate("update_master_item", func(l *core.Ledger) bool {
		// An omitted category keeps the one already recorded for the item.
		if upd.Category == "" {
			upd.Category = l.ItemInfoMap[originalName].Category
		}
		if upd.Category == "" {
			upd.Category = core.DefaultCategory
		}
		for li := range l.Lists {
			for ii := range l.Lists[li].Items {
				it := &l.Lists[li].Items[ii]
				if it.Name == originalName && it.Unit == originalUnit {
					it.Name, it.Unit, it.Category = upd.Name, upd.Unit, upd.Category
				}
			}
		}
		if upd.Name != originalName {
			delete(l.ItemInfoMap, originalName)
		}
		foldItemInfo(l, upd.Name, upd.Unit, upd.Category)
		return true
	})
	return nil
}

// AddCustomCategory registers a category beyond the built-in set.
func (s *LedgerService) AddCustomCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	s.mutate("add_category", func(l *core.Ledger) bool {
		return addCategory(l, name)
	})
	return nil
}

// replace swaps in a whole ledger, as an import does.
func (s *LedgerService) replace(op string, next *core.Ledger) {
	s.mutate(op, func(l *core.Ledger) bool {
		*l = *next
		return true
	})
}

func ensureList(l *core.Ledger, date time.Time) (int, bool) {
	if i := l.ListIndex(core.DayKey(date)); i >= 0 {
		return i, false
	}
	l.Lists = append(l.Lists, core.NewShoppingList(date))
	return len(l.Lists) - 1, true
}

// masterDefaults fills a missing unit or category from itemInfoMap, then
// from the global defaults.
func masterDefaults(l *core.Ledger, name, unit, category string) (string, string) {
	info, known := l.ItemInfoMap[name]
	if unit == "" {
		unit = core.DefaultUnit
		if known && info.Unit != "" {
			unit = info.Unit
		}
	}
	if category == "" {
		category = core.DefaultCategory
		if known && info.Category != "" {
			category = info.Category
		}
	}
	return unit, category
}

func foldItemInfo(l *core.Ledger, name, unit, category string) {
	l.ItemInfoMap[name] = core.ItemInfo{Unit: unit, Category: category}
	addCategory(l, category)
}

func addCategory(l *core.Ledger, name string) bool {
	if name == "" || core.IsBuiltinCategory(name) {
		return false
	}
	for _, c := range l.CustomCategories {
		if c == name {
			return false
		}
	}
	l.CustomCategories = append(l.CustomCategories, name)
	return true
}

func findOrCreateVendor(l *core.Ledger, name string, now time.Time) string {
	name = strings.TrimSpace(name)
	for _, v := range l.Vendors {
		if strings.EqualFold(strings.TrimSpace(v.Name), name) {
			return v.ID
		}
	}
	v := core.Vendor{ID: uniqueVendorID(l, now), Name: name}
	l.Vendors = append(l.Vendors, v)
	return v.ID
}

// token is a time-based id fragment: milliseconds in base 36.
func token(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36)
}

func uniqueItemID(list core.ShoppingList, base string) string {
	id := base
	for n := 1; list.ItemIndex(id) >= 0; n++ {
		id = base + "." + strconv.Itoa(n)
	}
	return id
}

func uniqueVendorID(l *core.Ledger, now time.Time) string {
	base := "v" + token(now)
	id := base
	for n := 1; l.VendorIndex(id) >= 0; n++ {
		id = base + "." + strconv.Itoa(n)
	}
	return id
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	return core.String(*p)
}
