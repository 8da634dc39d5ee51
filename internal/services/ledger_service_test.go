package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spesa/internal/core"
)

func TestCreateListIsIdempotent(t *testing.T) {
	s := newTestService(&fakeStore{})
	morning := time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)
	evening := time.Date(2025, 6, 1, 20, 0, 0, 0, time.Local)

	a := s.CreateList(morning)
	b := s.CreateList(evening)
	if a != b {
		t.Fatalf("expected same id, got %q and %q", a, b)
	}
	if n := len(s.Ledger().Lists); n != 1 {
		t.Fatalf("expected one list, got %d", n)
	}
}

func TestMutationsNeverAliasSnapshots(t *testing.T) {
	s := newTestService(&fakeStore{})
	id := s.CreateList(fixedNow)
	before := s.Ledger()
	if _, err := s.AddItem(id, core.ShoppingItem{Name: "Milk"}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(before.Lists[0].Items) != 0 {
		t.Fatalf("earlier snapshot was modified")
	}
	if len(s.Ledger().Lists[0].Items) != 1 {
		t.Fatalf("item not added")
	}
}

func TestAbsentIDsAreSilentNoOps(t *testing.T) {
	store := &fakeStore{}
	s := newTestService(store)
	changes := 0
	s.Subscribe(func(e Event) {
		if e.Kind == EventChanged {
			changes++
		}
	})

	s.DeleteList("nope")
	s.DeleteItem("nope", "x")
	s.DeleteVendor("nope")
	if err := s.UpdateItem("nope", "x", ItemPatch{Name: core.String("Tea")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.UpdateList("nope", core.ShoppingList{Name: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changes != 0 {
		t.Fatalf("expected no change events, got %d", changes)
	}
	if err := s.Flush(context.Background()); err != nil || store.saveCount() != 0 {
		t.Fatalf("expected no save, got %d (err=%v)", store.saveCount(), err)
	}
}

func TestUpdateItemMergesFields(t *testing.T) {
	s := newTestService(&fakeStore{})
	listID := s.CreateList(fixedNow)
	itemID, err := s.AddItem(listID, core.ShoppingItem{Name: "Eggs", Amount: 6})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	status := core.StatusBought
	err = s.UpdateItem(listID, itemID, ItemPatch{
		Status:          &status,
		PurchasedAmount: core.Float(6),
		PaidPrice:       core.Float(30000),
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	it := s.Ledger().Lists[0].Items[0]
	if it.Status != core.StatusBought || *it.PaidPrice != 30000 || it.Name != "Eggs" || it.Amount != 6 {
		t.Fatalf("unexpected item after patch: %+v", it)
	}

	if err := s.UpdateItem(listID, itemID, ItemPatch{PaidPrice: core.Float(-1)}); !errors.Is(err, core.ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
}

func TestAddItemDefaultsFromMasterInfo(t *testing.T) {
	s := newTestService(&fakeStore{})
	listID := s.CreateList(fixedNow)
	s.replace("seed", func() *core.Ledger {
		l := s.Ledger().Clone()
		l.ItemInfoMap["Oat milk"] = core.ItemInfo{Unit: "liter", Category: "Beverages"}
		return l
	}())

	if _, err := s.AddItem(listID, core.ShoppingItem{Name: "Oat milk"}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := s.AddItem(listID, core.ShoppingItem{Name: "Sponges"}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	items := s.Ledger().Lists[0].Items
	if items[0].Unit != "liter" || items[0].Category != "Beverages" {
		t.Fatalf("master info not applied: %+v", items[0])
	}
	if items[1].Unit != core.DefaultUnit || items[1].Category != core.DefaultCategory {
		t.Fatalf("defaults not applied: %+v", items[1])
	}
	if items[0].ID == items[1].ID {
		t.Fatalf("item ids collide: %s", items[0].ID)
	}

	if _, err := s.AddItem("missing", core.ShoppingItem{Name: "x"}); !errors.Is(err, ErrListNotFound) {
		t.Fatalf("expected ErrListNotFound, got %v", err)
	}
	if _, err := s.AddItem(listID, core.ShoppingItem{Name: "  "}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestAddItemFromSuggestion(t *testing.T) {
	s := newTestService(&fakeStore{})
	past := fixedNow.AddDate(0, 0, -10)
	pastID := s.CreateList(past)
	s.replace("seed", func() *core.Ledger {
		l := s.Ledger().Clone()
		i := l.ListIndex(pastID)
		l.Lists[i].Items = append(l.Lists[i].Items, boughtItem("a", "Milk", "liter", 3, 60000))
		return l
	}())

	sug := core.Suggestion{Name: "Milk", Unit: "liter", Category: "Dairy"}
	if !s.AddItemFromSuggestion(sug) {
		t.Fatalf("expected insert")
	}
	todayID := core.DayKey(fixedNow)
	l := s.Ledger()
	list := l.Lists[l.ListIndex(todayID)]
	if len(list.Items) != 1 {
		t.Fatalf("expected one item on today's list, got %+v", list.Items)
	}
	it := list.Items[0]
	if it.Status != core.StatusPending || it.Amount != 3 {
		t.Fatalf("unexpected suggested item %+v", it)
	}
	if it.EstimatedPrice == nil || *it.EstimatedPrice != 60000 {
		t.Fatalf("expected estimated price 60000, got %v", it.EstimatedPrice)
	}

	if s.AddItemFromSuggestion(sug) {
		t.Fatalf("duplicate pending item should be rejected")
	}
	if n := len(s.Ledger().Lists[l.ListIndex(todayID)].Items); n != 1 {
		t.Fatalf("duplicate inserted, %d items", n)
	}
}

func TestAddItemFromSuggestionWithoutHistory(t *testing.T) {
	s := newTestService(&fakeStore{})
	if !s.AddItemFromSuggestion(core.Suggestion{Name: "Flour", Unit: "kg"}) {
		t.Fatalf("expected insert")
	}
	it := s.Ledger().Lists[0].Items[0]
	if it.Amount != 1 || it.EstimatedPrice != nil {
		t.Fatalf("expected amount 1 and no estimate, got %+v", it)
	}
}

func TestAddOcrPurchase(t *testing.T) {
	s := newTestService(&fakeStore{})
	existing, err := s.AddVendor("Corner Shop")
	if err != nil {
		t.Fatalf("add vendor: %v", err)
	}

	batch := core.PurchaseBatch{
		Date: "2025-06-20",
		Items: []core.BatchLine{
			{Name: "Milk", Quantity: 2, Price: 50000, Unit: "liter", SuggestedCategory: "Dairy"},
			{Name: "Maple syrup", Quantity: 1, Price: 90000, SuggestedCategory: "Syrups"},
		},
	}
	name, err := s.AddOcrPurchase(batch, "card", core.PaymentPaid, "  corner shop ")
	if err != nil {
		t.Fatalf("add ocr purchase: %v", err)
	}
	want := core.ListName(time.Date(2025, 6, 20, 0, 0, 0, 0, time.Local))
	if name != want {
		t.Fatalf("expected list name %q, got %q", want, name)
	}

	l := s.Ledger()
	if len(l.Vendors) != 1 {
		t.Fatalf("vendor should be matched case-insensitively, got %+v", l.Vendors)
	}
	list := l.Lists[l.ListIndex("2025-06-20")]
	if len(list.Items) != 2 || list.Items[0].ID == list.Items[1].ID {
		t.Fatalf("unexpected items %+v", list.Items)
	}
	for _, it := range list.Items {
		if !it.IsBought() || it.VendorID == nil || *it.VendorID != existing.ID || it.PaymentMethod != "card" {
			t.Fatalf("item not booked as purchase: %+v", it)
		}
	}
	if list.Items[1].Unit != core.DefaultUnit {
		t.Fatalf("expected default unit, got %q", list.Items[1].Unit)
	}
	if info := l.ItemInfoMap["Maple syrup"]; info.Category != "Syrups" {
		t.Fatalf("item info not folded: %+v", info)
	}
	if len(l.CustomCategories) != 1 || l.CustomCategories[0] != "Syrups" {
		t.Fatalf("custom category not added: %v", l.CustomCategories)
	}
	if l.CategoryVendorMap["Syrups"] != existing.ID || l.CategoryVendorMap["Dairy"] != existing.ID {
		t.Fatalf("category vendor map not updated: %v", l.CategoryVendorMap)
	}
}

func TestAddOcrPurchaseRejectsBadDate(t *testing.T) {
	s := newTestService(&fakeStore{})
	before := s.Ledger()
	_, err := s.AddOcrPurchase(core.PurchaseBatch{Date: "someday", Items: []core.BatchLine{{Name: "x", Quantity: 1}}}, "cash", core.PaymentDue, "New vendor")
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if s.Ledger() != before {
		t.Fatalf("ledger changed after rejected batch")
	}
}

func TestDeleteVendorNullifiesReferences(t *testing.T) {
	s := newTestService(&fakeStore{})
	v, _ := s.AddVendor("Market")
	keep, _ := s.AddVendor("Bakery")
	listID := s.CreateList(fixedNow)
	for i := 0; i < 3; i++ {
		id, err := s.AddItem(listID, core.ShoppingItem{Name: "Item"})
		if err != nil {
			t.Fatalf("add item: %v", err)
		}
		_ = s.UpdateItem(listID, id, ItemPatch{VendorID: core.String(v.ID)})
	}
	other, _ := s.AddItem(listID, core.ShoppingItem{Name: "Bread"})
	_ = s.UpdateItem(listID, other, ItemPatch{VendorID: core.String(keep.ID)})
	s.UpdateCategoryVendorMap("Dairy", v.ID)

	s.DeleteVendor(v.ID)

	l := s.Ledger()
	if len(l.Lists[0].Items) != 4 {
		t.Fatalf("items were removed: %d left", len(l.Lists[0].Items))
	}
	for _, it := range l.Lists[0].Items {
		if it.VendorID != nil && *it.VendorID == v.ID {
			t.Fatalf("dangling vendor reference on %+v", it)
		}
	}
	if it := l.Lists[0].Items[3]; it.VendorID == nil || *it.VendorID != keep.ID {
		t.Fatalf("unrelated vendor reference cleared: %+v", it)
	}
	if _, ok := l.CategoryVendorMap["Dairy"]; ok {
		t.Fatalf("category preference still points at deleted vendor")
	}
	if len(l.Vendors) != 1 {
		t.Fatalf("expected one vendor left, got %+v", l.Vendors)
	}
}

func TestFindOrCreateVendor(t *testing.T) {
	s := newTestService(&fakeStore{})
	v, _ := s.AddVendor("Corner Market")

	id, err := s.FindOrCreateVendor("  corner market ")
	if err != nil || id != v.ID {
		t.Fatalf("FindOrCreateVendor(existing) = %q, %v, want %q", id, err, v.ID)
	}
	created, err := s.FindOrCreateVendor("Bakery")
	if err != nil || created == "" || created == v.ID {
		t.Fatalf("FindOrCreateVendor(new) = %q, %v", created, err)
	}
	if n := len(s.Ledger().Vendors); n != 2 {
		t.Fatalf("vendors = %d, want 2", n)
	}
	if _, err := s.FindOrCreateVendor("   "); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("blank name err = %v, want ErrEmptyName", err)
	}
}

func TestUpdateMasterItem(t *testing.T) {
	s := newTestService(&fakeStore{})
	s.replace("seed", func() *core.Ledger {
		l := core.NewLedger()
		a := core.NewShoppingList(fixedNow.AddDate(0, 0, -3))
		a.Items = []core.ShoppingItem{boughtItem("1", "Milk", "liter", 1, 10), boughtItem("2", "Milk", "ml", 500, 5)}
		b := core.NewShoppingList(fixedNow)
		b.Items = []core.ShoppingItem{{ID: "3", Name: "Milk", Unit: "liter", Status: core.StatusPending}}
		l.Lists = []core.ShoppingList{a, b}
		l.ItemInfoMap["Milk"] = core.ItemInfo{Unit: "liter", Category: "Dairy"}
		return l
	}())

	err := s.UpdateMasterItem("Milk", "liter", MasterItemUpdate{Name: "Whole milk", Unit: "liter", Category: "Dairy"})
	if err != nil {
		t.Fatalf("update master item: %v", err)
	}
	l := s.Ledger()
	if l.Lists[0].Items[0].Name != "Whole milk" || l.Lists[1].Items[0].Name != "Whole milk" {
		t.Fatalf("matching items not renamed: %+v", l.Lists)
	}
	if l.Lists[0].Items[1].Name != "Milk" {
		t.Fatalf("other unit should be untouched: %+v", l.Lists[0].Items[1])
	}
	if _, ok := l.ItemInfoMap["Milk"]; ok {
		t.Fatalf("old info key should be removed on rename")
	}
	if l.ItemInfoMap["Whole milk"].Unit != "liter" {
		t.Fatalf("new info key missing: %v", l.ItemInfoMap)
	}

	if err := s.UpdateMasterItem("Whole milk", "liter", MasterItemUpdate{Name: "Whole milk", Unit: "liter", Category: "Beverages"}); err != nil {
		t.Fatalf("update master item: %v", err)
	}
	if got := s.Ledger().ItemInfoMap["Whole milk"].Category; got != "Beverages" {
		t.Fatalf("category not updated, got %q", got)
	}

	if err := s.UpdateMasterItem("Whole milk", "liter", MasterItemUpdate{Name: "Milk"}); err != nil {
		t.Fatalf("update master item: %v", err)
	}
	l = s.Ledger()
	if got := l.ItemInfoMap["Milk"].Category; got != "Beverages" {
		t.Fatalf("omitted category should be kept, got %q", got)
	}
	if got := l.Lists[1].Items[0]; got.Name != "Milk" || got.Category != "Beverages" || got.Unit != "liter" {
		t.Fatalf("items should keep category and unit: %+v", got)
	}
}

func TestUpdateListRejectsMoveOntoAnotherDay(t *testing.T) {
	s := newTestService(&fakeStore{})
	earlier := s.CreateList(fixedNow.AddDate(0, 0, -2))
	today := s.CreateList(fixedNow)

	moved := s.Ledger().Lists[s.Ledger().ListIndex(earlier)]
	moved.CreatedAt = core.StartOfDay(fixedNow).Format(time.RFC3339)
	if err := s.UpdateList(earlier, moved); !errors.Is(err, core.ErrDuplicateDay) {
		t.Fatalf("expected ErrDuplicateDay, got %v", err)
	}
	if got := s.Ledger().Lists; len(got) != 2 || got[0].CreatedAt == got[1].CreatedAt {
		t.Fatalf("rejected update changed the ledger: %+v", got)
	}

	renamed := s.Ledger().Lists[s.Ledger().ListIndex(today)]
	renamed.Name = "Big shop"
	if err := s.UpdateList(today, renamed); err != nil {
		t.Fatalf("UpdateList: %v", err)
	}
	if got := s.Ledger().Lists[s.Ledger().ListIndex(today)].Name; got != "Big shop" {
		t.Fatalf("name not updated, got %q", got)
	}
}

func TestAddCustomCategory(t *testing.T) {
	s := newTestService(&fakeStore{})
	_ = s.AddCustomCategory("Syrups")
	_ = s.AddCustomCategory("Syrups")
	_ = s.AddCustomCategory("Dairy")
	if got := s.Ledger().CustomCategories; len(got) != 1 || got[0] != "Syrups" {
		t.Fatalf("unexpected custom categories %v", got)
	}
	if err := s.AddCustomCategory(""); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}
