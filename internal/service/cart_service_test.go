package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/repository"

	"gorm.io/gorm"
)

func assertCartError(t *testing.T, err error, target error, status int, message string) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if se.Code != status {
		t.Fatalf("status want %d got %d", status, se.Code)
	}
	if se.Message != message {
		t.Fatalf("message want %q got %q", message, se.Message)
	}
	if Reason(err) != target.Error() {
		t.Fatalf("reason want %q got %q", target.Error(), Reason(err))
	}
}

func countLines(t *testing.T, db *gorm.DB, cartID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error; err != nil {
		t.Fatalf("count cart lines failed: %v", err)
	}
	return count
}

func TestAddItemCreatesCartForNewCustomer(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}

	cart, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: item.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if cart.CustomerID != 1 || len(cart.CartItems) != 1 {
		t.Fatalf("unexpected cart: %+v", cart)
	}
	line := cart.CartItems[0]
	if line.ItemID != item.ID || line.Quantity != 2 {
		t.Fatalf("unexpected line: %+v", line)
	}
	if line.Item == nil || line.Item.Name != "mug" {
		t.Fatalf("expected item details expanded, got %+v", line.Item)
	}

	var carts int64
	db.Model(&models.Cart{}).Where("customer_id = ?", 1).Count(&carts)
	if carts != 1 {
		t.Fatalf("expected exactly one cart, got %d", carts)
	}
}

func TestAddItemReusesExistingCart(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	mug := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	pen := seedItem(t, db, "pen", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}

	first, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: mug.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add mug failed: %v", err)
	}
	second, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: pen.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add pen failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same cart, got %d and %d", first.ID, second.ID)
	}
	if len(second.CartItems) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(second.CartItems))
	}
}

func TestAddItemRejectsDuplicate(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}

	if _, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: item.ID, Quantity: 1}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	_, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: item.ID, Quantity: 1})
	assertCartError(t, err, ErrItemAlreadyInCart, http.StatusBadRequest, MsgAddItemFailed)
}

func TestAddItemStockAndStatusChecks(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	limited := seedItem(t, db, "limited", 3, models.ItemStatusAvailable)
	hidden := seedItem(t, db, "hidden", 10, models.ItemStatusUnavailable)
	customer := CustomerContext{ID: 1}

	_, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: limited.ID, Quantity: 4})
	assertCartError(t, err, ErrItemNotAvailable, http.StatusBadRequest, MsgAddItemFailed)

	_, err = svc.AddItem(context.Background(), customer, CartItemInput{ItemID: hidden.ID, Quantity: 1})
	assertCartError(t, err, ErrItemNotAvailable, http.StatusBadRequest, MsgAddItemFailed)

	if carts, lines := countRows(t, db, &models.Cart{}), countRows(t, db, &models.CartItem{}); carts != 0 || lines != 0 {
		t.Fatalf("failed adds must not write, carts=%d lines=%d", carts, lines)
	}

	cart, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: limited.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("adding exactly the stock should succeed: %v", err)
	}
	if cart.CartItems[0].Quantity != 3 {
		t.Fatalf("quantity want 3 got %d", cart.CartItems[0].Quantity)
	}
}

func TestAddItemRollsBackCartWhenLineInsertFails(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)

	diskFull := errors.New("disk full")
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_cart_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "cart_items" {
			_ = tx.AddError(diskFull)
		}
	})
	if err != nil {
		t.Fatalf("register callback failed: %v", err)
	}

	_, err = svc.AddItem(context.Background(), CustomerContext{ID: 1}, CartItemInput{ItemID: item.ID, Quantity: 1})
	if !errors.Is(err, diskFull) {
		t.Fatalf("expected insert failure, got %v", err)
	}
	if StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", StatusOf(err))
	}
	if carts := countRows(t, db, &models.Cart{}); carts != 0 {
		t.Fatalf("lazily created cart must be rolled back, got %d carts", carts)
	}
	if lines := countRows(t, db, &models.CartItem{}); lines != 0 {
		t.Fatalf("no cart lines expected, got %d", lines)
	}
}

func TestAddItemMissingItemKeepsNotFoundStatus(t *testing.T) {
	svc := newTestCartService(openServiceTestDB(t))

	_, err := svc.AddItem(context.Background(), CustomerContext{ID: 1}, CartItemInput{ItemID: 999, Quantity: 1})
	assertCartError(t, err, ErrItemNotFound, http.StatusNotFound, MsgAddItemFailed)
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	svc := NewCartService(nil, nil, nil, CartOptions{MaxLineQuantity: 10})

	_, err := svc.AddItem(context.Background(), CustomerContext{ID: 1}, CartItemInput{ItemID: 1, Quantity: 0})
	assertCartError(t, err, ErrInvalidCartItem, http.StatusBadRequest, MsgAddItemFailed)

	_, err = svc.AddItem(context.Background(), CustomerContext{ID: 1}, CartItemInput{ItemID: 1, Quantity: 11})
	assertCartError(t, err, ErrInvalidCartItem, http.StatusBadRequest, MsgAddItemFailed)

	_, err = svc.AddItem(context.Background(), CustomerContext{}, CartItemInput{ItemID: 1, Quantity: 1})
	assertCartError(t, err, ErrCustomerRequired, http.StatusUnauthorized, MsgAddItemFailed)
}

func TestAddItemDoesNotReserveStock(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "last-one", 1, models.ItemStatusAvailable)

	for _, id := range []uint{1, 2} {
		if _, err := svc.AddItem(context.Background(), CustomerContext{ID: id}, CartItemInput{ItemID: item.ID, Quantity: 1}); err != nil {
			t.Fatalf("customer %d add failed: %v", id, err)
		}
	}
	var reloaded models.Item
	db.First(&reloaded, item.ID)
	if reloaded.Stock != 1 {
		t.Fatalf("stock should be untouched, got %d", reloaded.Stock)
	}
}

func TestRemoveItemDecrementsQuantity(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}
	if _, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: item.ID, Quantity: 3}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cart, err := svc.RemoveItem(context.Background(), customer, CartItemInput{ItemID: item.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(cart.CartItems) != 1 || cart.CartItems[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %+v", cart.CartItems)
	}
}

func TestRemoveItemDeletesLineAtZero(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}
	added, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: item.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cart, err := svc.RemoveItem(context.Background(), customer, CartItemInput{ItemID: item.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if cart.ID != added.ID {
		t.Fatalf("cart should survive an empty state")
	}
	if len(cart.CartItems) != 0 || countLines(t, db, cart.ID) != 0 {
		t.Fatalf("expected no lines, got %+v", cart.CartItems)
	}
}

func TestRemoveItemMatchesRequestedItem(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	first := seedItem(t, db, "first", 5, models.ItemStatusAvailable)
	second := seedItem(t, db, "second", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}
	if _, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: first.ID, Quantity: 2}); err != nil {
		t.Fatalf("add first failed: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: second.ID, Quantity: 2}); err != nil {
		t.Fatalf("add second failed: %v", err)
	}

	cart, err := svc.RemoveItem(context.Background(), customer, CartItemInput{ItemID: second.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if got := cart.FindItem(first.ID); got == nil || got.Quantity != 2 {
		t.Fatalf("first line must be untouched, got %+v", got)
	}
	if got := cart.FindItem(second.ID); got == nil || got.Quantity != 1 {
		t.Fatalf("second line should be decremented, got %+v", got)
	}
}

func TestRemoveItemFailures(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	inCart := seedItem(t, db, "in-cart", 5, models.ItemStatusAvailable)
	other := seedItem(t, db, "other", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}

	_, err := svc.RemoveItem(context.Background(), customer, CartItemInput{ItemID: inCart.ID, Quantity: 1})
	assertCartError(t, err, ErrCartNotFound, http.StatusBadRequest, MsgRemoveItemFailed)

	if _, err := svc.AddItem(context.Background(), customer, CartItemInput{ItemID: inCart.ID, Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	_, err = svc.RemoveItem(context.Background(), customer, CartItemInput{ItemID: 999, Quantity: 1})
	assertCartError(t, err, ErrItemNotFound, http.StatusNotFound, MsgRemoveItemFailed)

	_, err = svc.RemoveItem(context.Background(), customer, CartItemInput{ItemID: other.ID, Quantity: 1})
	assertCartError(t, err, ErrItemNotInCart, http.StatusBadRequest, MsgRemoveItemFailed)

	_, err = svc.RemoveItem(context.Background(), customer, CartItemInput{ItemID: inCart.ID, Quantity: 3})
	assertCartError(t, err, ErrRemoveQuantityExceeded, http.StatusBadRequest, MsgRemoveItemFailed)

	cart, err := svc.MyCart(context.Background(), customer)
	if err != nil {
		t.Fatalf("my cart failed: %v", err)
	}
	if cart.CartItems[0].Quantity != 2 {
		t.Fatalf("failed removals must not change quantity, got %d", cart.CartItems[0].Quantity)
	}
}

func TestFindOneAndMyCartNotFound(t *testing.T) {
	svc := newTestCartService(openServiceTestDB(t))

	_, err := svc.FindOne(context.Background(), 12345)
	assertCartError(t, err, ErrCartNotFound, http.StatusNotFound, MsgFindCartFailed)

	_, err = svc.MyCart(context.Background(), CustomerContext{ID: 7})
	assertCartError(t, err, ErrCartNotFound, http.StatusNotFound, MsgFindCartFailed)
}

func TestFindOneReturnsCartWithItems(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	added, err := svc.AddItem(context.Background(), CustomerContext{ID: 3}, CartItemInput{ItemID: item.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cart, err := svc.FindOne(context.Background(), added.ID)
	if err != nil {
		t.Fatalf("find one failed: %v", err)
	}
	if cart.CustomerID != 3 || len(cart.CartItems) != 1 || cart.CartItems[0].Item == nil {
		t.Fatalf("unexpected cart: %+v", cart)
	}
}

func TestDeleteCartScopedToOwner(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	owner := CustomerContext{ID: 1}
	added, err := svc.AddItem(context.Background(), owner, CartItemInput{ItemID: item.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	_, err = svc.DeleteCart(context.Background(), CustomerContext{ID: 2}, added.ID)
	assertCartError(t, err, ErrCartNotFound, http.StatusBadRequest, MsgDeleteCartFailed)
	if _, err := svc.FindOne(context.Background(), added.ID); err != nil {
		t.Fatalf("cart must survive foreign delete: %v", err)
	}

	deleted, err := svc.DeleteCart(context.Background(), owner, added.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted.ID != added.ID || len(deleted.CartItems) != 1 {
		t.Fatalf("expected deleted snapshot with lines, got %+v", deleted)
	}
	if countLines(t, db, added.ID) != 0 {
		t.Fatalf("cart lines must be removed with the cart")
	}
	_, err = svc.FindOne(context.Background(), added.ID)
	assertCartError(t, err, ErrCartNotFound, http.StatusNotFound, MsgFindCartFailed)

	recreated, err := svc.AddItem(context.Background(), owner, CartItemInput{ItemID: item.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add after delete failed: %v", err)
	}
	if recreated.ID == added.ID {
		t.Fatalf("expected a fresh cart after delete")
	}
}

func TestReconcileItemRemovesUnavailableLines(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestCartService(db)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	keep := seedItem(t, db, "pen", 5, models.ItemStatusAvailable)
	for _, id := range []uint{1, 2} {
		if _, err := svc.AddItem(context.Background(), CustomerContext{ID: id}, CartItemInput{ItemID: item.ID, Quantity: 1}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if _, err := svc.AddItem(context.Background(), CustomerContext{ID: 1}, CartItemInput{ItemID: keep.ID, Quantity: 1}); err != nil {
		t.Fatalf("add keep failed: %v", err)
	}

	removed, err := svc.ReconcileItem(context.Background(), item.ID)
	if err != nil || removed != 0 {
		t.Fatalf("available item must not be reconciled, removed=%d err=%v", removed, err)
	}

	if err := db.Model(&models.Item{}).Where("id = ?", item.ID).Update("status", models.ItemStatusUnavailable).Error; err != nil {
		t.Fatalf("mark unavailable failed: %v", err)
	}
	removed, err = svc.ReconcileItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed want 2 got %d", removed)
	}
	cart, err := svc.MyCart(context.Background(), CustomerContext{ID: 1})
	if err != nil {
		t.Fatalf("my cart failed: %v", err)
	}
	if len(cart.CartItems) != 1 || cart.CartItems[0].ItemID != keep.ID {
		t.Fatalf("only the available line should remain, got %+v", cart.CartItems)
	}
}

func TestMyCartSnapshotRefreshesAfterItemUpdate(t *testing.T) {
	startTestRedis(t)
	db := openServiceTestDB(t)
	cartItems := repository.NewCartItemRepository(db)
	svc := NewCartService(repository.NewCartRepository(db), cartItems, repository.NewItemRepository(db), CartOptions{CacheTTL: time.Minute})
	items := NewItemService(repository.NewItemRepository(db), cartItems, nil)
	item := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, customer, CartItemInput{ItemID: item.ID, Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.MyCart(ctx, customer); err != nil {
		t.Fatalf("my cart failed: %v", err)
	}

	// 绕过服务直接改库，快照仍然命中
	if err := db.Model(&models.CartItem{}).Where("item_id = ?", item.ID).Update("quantity", 3).Error; err != nil {
		t.Fatalf("update line failed: %v", err)
	}
	cached, err := svc.MyCart(ctx, customer)
	if err != nil {
		t.Fatalf("my cart failed: %v", err)
	}
	if cached.CartItems[0].Quantity != 2 {
		t.Fatalf("expected snapshot hit with quantity 2, got %d", cached.CartItems[0].Quantity)
	}

	if _, err := items.Update(ctx, item.ID, ItemInput{Name: "mug", Price: "99.00", Stock: 1}); err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	fresh, err := svc.MyCart(ctx, customer)
	if err != nil {
		t.Fatalf("my cart failed: %v", err)
	}
	line := fresh.CartItems[0]
	if line.Item == nil || line.Item.PriceAmount.String() != "99.00" || line.Item.Stock != 1 {
		t.Fatalf("expected refreshed item details, got %+v", line.Item)
	}
	if line.Quantity != 3 {
		t.Fatalf("expected reloaded quantity 3, got %d", line.Quantity)
	}
	found, err := svc.FindOne(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("find one failed: %v", err)
	}
	if found.Subtotal().String() != fresh.Subtotal().String() {
		t.Fatalf("my cart subtotal %s differs from find one %s", fresh.Subtotal(), found.Subtotal())
	}
}

func TestMyCartSnapshotInvalidatedByCartMutations(t *testing.T) {
	startTestRedis(t)
	db := openServiceTestDB(t)
	svc := NewCartService(repository.NewCartRepository(db), repository.NewCartItemRepository(db), repository.NewItemRepository(db), CartOptions{CacheTTL: time.Minute})
	mug := seedItem(t, db, "mug", 5, models.ItemStatusAvailable)
	pen := seedItem(t, db, "pen", 5, models.ItemStatusAvailable)
	customer := CustomerContext{ID: 1}
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, customer, CartItemInput{ItemID: mug.ID, Quantity: 1}); err != nil {
		t.Fatalf("add mug failed: %v", err)
	}
	if cart, err := svc.MyCart(ctx, customer); err != nil || len(cart.CartItems) != 1 {
		t.Fatalf("expected one line, cart=%+v err=%v", cart, err)
	}
	if _, err := svc.AddItem(ctx, customer, CartItemInput{ItemID: pen.ID, Quantity: 1}); err != nil {
		t.Fatalf("add pen failed: %v", err)
	}
	cart, err := svc.MyCart(ctx, customer)
	if err != nil || len(cart.CartItems) != 2 {
		t.Fatalf("expected two lines after add, cart=%+v err=%v", cart, err)
	}

	if _, err := svc.DeleteCart(ctx, customer, cart.ID); err != nil {
		t.Fatalf("delete cart failed: %v", err)
	}
	_, err = svc.MyCart(ctx, customer)
	assertCartError(t, err, ErrCartNotFound, http.StatusNotFound, MsgFindCartFailed)
}
