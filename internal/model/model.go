package model

import (
	"strings"
	"time"
)

// Date binds date-only JSON values ("2006-01-02").
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

type Book struct {
	ID              int64  `json:"-" db:"id"`
	BookUid         string `json:"bookUid" db:"book_uid"`
	ISBN            string `json:"isbn" db:"isbn"`
	Title           string `json:"title" db:"title"`
	AuthorID        int64  `json:"-" db:"author_id"`
	PublisherID     int64  `json:"-" db:"publisher_id"`
	TotalCopies     int    `json:"totalCopies" db:"total_copies"`
	AvailableCopies int    `json:"availableCopies" db:"available_copies"`
}

type MemberStatus string

const (
	MemberActive    MemberStatus = "ACTIVE"
	MemberSuspended MemberStatus = "SUSPENDED"
	MemberExpired   MemberStatus = "EXPIRED"
	MemberBanned    MemberStatus = "BANNED"
)

type Member struct {
	ID           int64        `json:"-" db:"id"`
	MemberUid    string       `json:"memberUid" db:"member_uid"`
	MembershipNo string       `json:"membershipNo" db:"membership_no"`
	Name         string       `json:"name" db:"name"`
	Email        string       `json:"email" db:"email"`
	Status       MemberStatus `json:"status" db:"status"`
	StartDate    time.Time    `json:"startDate" db:"start_date"`
	ExpiryDate   time.Time    `json:"expiryDate" db:"expiry_date"`
}

type BorrowingStatus string

const (
	BorrowingBorrowed BorrowingStatus = "BORROWED"
	BorrowingReturned BorrowingStatus = "RETURNED"
	BorrowingOverdue  BorrowingStatus = "OVERDUE"
	BorrowingLost     BorrowingStatus = "LOST"
)

type Borrowing struct {
	ID              int64           `json:"-" db:"id"`
	BorrowingUid    string          `json:"borrowingUid" db:"borrowing_uid"`
	MemberID        int64           `json:"-" db:"member_id"`
	BookID          int64           `json:"-" db:"book_id"`
	BorrowDate      time.Time       `json:"borrowDate" db:"borrow_date"`
	DueDate         time.Time       `json:"dueDate" db:"due_date"`
	ReturnDate      *time.Time      `json:"returnDate,omitempty" db:"return_date"`
	Status          BorrowingStatus `json:"status" db:"status"`
	FineAmountCents int64           `json:"fineAmountCents" db:"fine_amount_cents"`
}

// EffectiveStatus recomputes the derived overdue flag at asOf, so that
// a stale stored status never leaks into decisions.
func (b Borrowing) EffectiveStatus(asOf time.Time) BorrowingStatus {
	if b.Status == BorrowingBorrowed && b.DueDate.Before(asOf) {
		return BorrowingOverdue
	}
	return b.Status
}

// Open reports whether the borrowing still holds a copy.
func (b Borrowing) Open() bool {
	return b.Status == BorrowingBorrowed || b.Status == BorrowingOverdue
}

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationFulfilled ReservationStatus = "FULFILLED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

type Reservation struct {
	ID              int64             `json:"-" db:"id"`
	ReservationUid  string            `json:"reservationUid" db:"reservation_uid"`
	MemberID        int64             `json:"-" db:"member_id"`
	BookID          int64             `json:"-" db:"book_id"`
	Status          ReservationStatus `json:"status" db:"status"`
	ReservationDate time.Time         `json:"reservationDate" db:"reservation_date"`
	ExpiryDate      time.Time         `json:"expiryDate" db:"expiry_date"`
	FulfilledDate   *time.Time        `json:"fulfilledDate,omitempty" db:"fulfilled_date"`
	ClaimDeadline   *time.Time        `json:"claimDeadline,omitempty" db:"claim_deadline"`
}

type FineReason string

const (
	FineOverdue FineReason = "OVERDUE"
	FineDamage  FineReason = "DAMAGE"
	FineLost    FineReason = "LOST"
)

type FineStatus string

const (
	FineUnpaid FineStatus = "UNPAID"
	FinePaid   FineStatus = "PAID"
	FineWaived FineStatus = "WAIVED"
)

type Fine struct {
	ID          int64      `json:"-" db:"id"`
	FineUid     string     `json:"fineUid" db:"fine_uid"`
	BorrowingID int64      `json:"-" db:"borrowing_id"`
	MemberID    int64      `json:"-" db:"member_id"`
	AmountCents int64      `json:"amountCents" db:"amount_cents"`
	Reason      FineReason `json:"reason" db:"reason"`
	Status      FineStatus `json:"status" db:"status"`
	IssuedDate  time.Time  `json:"issuedDate" db:"issued_date"`
	PaidDate    *time.Time `json:"paidDate,omitempty" db:"paid_date"`
}

type CreateMemberRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type BorrowRequest struct {
	MemberUid string `json:"memberUid" validate:"required,uuid"`
	BookUid   string `json:"bookUid" validate:"required,uuid"`
}

type ReturnRequest struct {
	ReturnDate Date `json:"returnDate"`
}

type ReserveRequest struct {
	MemberUid string `json:"memberUid" validate:"required,uuid"`
	BookUid   string `json:"bookUid" validate:"required,uuid"`
	TTLDays   int    `json:"ttlDays" validate:"omitempty,min=1,max=90"`
}

type PayFineRequest struct {
	AmountCents int64 `json:"amountCents" validate:"required,gt=0"`
}

type IssueFineRequest struct {
	BorrowingUid string     `json:"borrowingUid" validate:"required,uuid"`
	Reason       FineReason `json:"reason" validate:"required,oneof=DAMAGE LOST"`
	AmountCents  int64      `json:"amountCents" validate:"required,gt=0"`
}

// ReturnResult is what a completed return hands back to the caller:
// the closed borrowing, the overdue fine settled on return (if any) and
// the reservation fulfilled by the freed copy (if any).
type ReturnResult struct {
	Borrowing Borrowing    `json:"borrowing"`
	Fine      *Fine        `json:"fine,omitempty"`
	Fulfilled *Reservation `json:"fulfilledReservation,omitempty"`
}

type NotificationType string

const (
	NotifyReservationFulfilled NotificationType = "RESERVATION_FULFILLED"
	NotifyBookAvailable        NotificationType = "BOOK_AVAILABLE"
	NotifyFineIssued           NotificationType = "FINE_ISSUED"
)

// Notification is published to Kafka after the owning transaction commits.
// Delivery is at-least-once; consumers must tolerate duplicates.
type Notification struct {
	Type           NotificationType `json:"type"`
	MemberUid      string           `json:"memberUid"`
	BookUid        string           `json:"bookUid,omitempty"`
	ReservationUid string           `json:"reservationUid,omitempty"`
	FineUid        string           `json:"fineUid,omitempty"`
	OccurredAt     time.Time        `json:"occurredAt"`
}
