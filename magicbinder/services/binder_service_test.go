package services

import (
	"context"
	"testing"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/abrams/magicbinder/magicbinder/database/repositories/mock"
	"github.com/abrams/magicbinder/magicbinder/inventory"
	"go.uber.org/mock/gomock"
)

func TestAcquireRequiresKnownCard(t *testing.T) {
	ctrl := gomock.NewController(t)
	cards := mock.NewMockCardRepository(ctrl)
	binder := mock.NewMockBinderRepository(ctrl)

	cards.EXPECT().
		GetByID(gomock.Any(), boltID).
		Return(&models.Card{ID: boltID, Name: "Lightning Bolt"}, nil)
	binder.EXPECT().
		Add(gomock.Any(), gomock.Any(), int64(7), boltID, 4).
		Return(nil)

	s := NewBinderService(nil, binder, cards, newOwnershipCache(t))
	if err := s.Acquire(context.Background(), 7, boltID, 4); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
}

func TestAcquireRejectsNonPositiveAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewBinderService(nil, mock.NewMockBinderRepository(ctrl), mock.NewMockCardRepository(ctrl), newOwnershipCache(t))

	for _, amount := range []int{0, -3} {
		err := s.Acquire(context.Background(), 7, boltID, amount)
		if !inventory.IsInvalidInput(err) {
			t.Errorf("Acquire(amount=%d) = %v, want InvalidInputError", amount, err)
		}
	}
}

func TestReleaseInsufficientQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	binder := mock.NewMockBinderRepository(ctrl)

	binder.EXPECT().
		Quantity(gomock.Any(), gomock.Any(), int64(7), boltID).
		Return(2, nil)

	s := NewBinderService(nil, binder, mock.NewMockCardRepository(ctrl), newOwnershipCache(t))
	err := s.Release(context.Background(), 7, boltID, 3)
	if !inventory.IsInsufficientQuantity(err) {
		t.Fatalf("Release = %v, want InsufficientQuantityError", err)
	}
}

func TestReleaseRemovesCopies(t *testing.T) {
	ctrl := gomock.NewController(t)
	binder := mock.NewMockBinderRepository(ctrl)

	binder.EXPECT().
		Quantity(gomock.Any(), gomock.Any(), int64(7), boltID).
		Return(4, nil)
	binder.EXPECT().
		Remove(gomock.Any(), gomock.Any(), int64(7), boltID, 4).
		Return(nil)

	s := NewBinderService(nil, binder, mock.NewMockCardRepository(ctrl), newOwnershipCache(t))
	if err := s.Release(context.Background(), 7, boltID, 4); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestOwnedQuantityPrefersCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	binder := mock.NewMockBinderRepository(ctrl)

	// One repository read, then the cache serves the rest.
	binder.EXPECT().
		Quantity(gomock.Any(), gomock.Any(), int64(7), boltID).
		Return(5, nil).
		Times(1)

	s := NewBinderService(nil, binder, mock.NewMockCardRepository(ctrl), newOwnershipCache(t))
	for run := 0; run < 3; run++ {
		qty, err := s.OwnedQuantity(context.Background(), 7, boltID)
		if err != nil {
			t.Fatalf("run %d: OwnedQuantity: %v", run, err)
		}
		if qty != 5 {
			t.Errorf("run %d: quantity = %d, want 5", run, qty)
		}
	}
}
