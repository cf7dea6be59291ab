package model

import "testing"

func TestProduct_DiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		discount int64
		want     int64
	}{
		{"割引なし", 45000, 0, 45000},
		{"10%引き", 45000, 10, 40500},
		{"端数切り上げ(112.5->113)", 150, 25, 113},
		{"端数切り捨て(899.1->899)", 999, 10, 899},
		{"負の割引は無視", 45000, -5, 45000},
		{"100%以上は0", 45000, 100, 0},
		{"価格0", 0, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: tt.price, DiscountPercentage: tt.discount}
			if got := p.DiscountedPrice(); got != tt.want {
				t.Errorf("DiscountedPrice() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	terminal := []OrderStatus{OrderStatusDelivered, OrderStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	open := []OrderStatus{OrderStatusPlaced, OrderStatusConfirmed, OrderStatusShipped}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	terminal := []AppointmentStatus{AppointmentStatusCompleted, AppointmentStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	open := []AppointmentStatus{AppointmentStatusPaymentPending, AppointmentStatusConfirmed}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestUser_CanLogin(t *testing.T) {
	u := User{AccountStatus: AccountStatusActive}
	if !u.CanLogin() {
		t.Error("ACTIVE user should be able to log in")
	}

	for _, s := range []AccountStatus{AccountStatusSuspended, AccountStatusDeactivated} {
		u := User{AccountStatus: s}
		if u.CanLogin() {
			t.Errorf("%s user should not be able to log in", s)
		}
	}
}
