package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseOrder is the aggregate type name used in events
const AggregateTypePurchaseOrder = "PurchaseOrder"

var hundred = decimal.NewFromInt(100)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending           PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCompleted         PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// AllPurchaseOrderStatuses lists every status in lifecycle order
func AllPurchaseOrderStatuses() []PurchaseOrderStatus {
	return []PurchaseOrderStatus{
		PurchaseOrderStatusPending,
		PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusReceived,
		PurchaseOrderStatusCompleted,
		PurchaseOrderStatusCancelled,
	}
}

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusReceived,
		PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further change is allowed
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusCompleted || s == PurchaseOrderStatusCancelled
}

// CanTransitionTo is the single transition table for purchase orders.
// Staying in the same status is not a transition and returns false.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusPartiallyReceived ||
			target == PurchaseOrderStatusReceived ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartiallyReceived:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusReceived:
		return target == PurchaseOrderStatusCompleted || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return false
	}
	return false
}

// AllowsReturns reports whether goods on an order in this status can be returned
func (s PurchaseOrderStatus) AllowsReturns() bool {
	return s == PurchaseOrderStatusPartiallyReceived ||
		s == PurchaseOrderStatusReceived ||
		s == PurchaseOrderStatusCompleted
}

// PurchaseOrderLine is one ordered item within a purchase order.
// Invariants: 0 <= ReceivedQuantity <= Quantity and 0 <= ReturnedQuantity <= ReceivedQuantity.
type PurchaseOrderLine struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ItemID           uuid.UUID
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	TaxRate          decimal.Decimal // percent, 0..100
	TaxAmount        decimal.Decimal
	LineTotal        decimal.Decimal // Quantity * UnitPrice, before tax
	ReceivedQuantity decimal.Decimal
	ReturnedQuantity decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LineSpec is the input for creating an order line
type LineSpec struct {
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// Validate checks quantity, price and tax rate
func (s LineSpec) Validate() error {
	if s.ItemID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Item ID cannot be empty")
	}
	if !s.Quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if s.UnitPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(hundred) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Tax rate must be between 0 and 100")
	}
	return nil
}

// NewPurchaseOrderLine creates a line with derived amounts
func NewPurchaseOrderLine(orderID uuid.UUID, spec LineSpec) (*PurchaseOrderLine, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	line := &PurchaseOrderLine{
		ID:               uuid.New(),
		OrderID:          orderID,
		ItemID:           spec.ItemID,
		Quantity:         spec.Quantity,
		UnitPrice:        spec.UnitPrice,
		TaxRate:          spec.TaxRate,
		ReceivedQuantity: decimal.Zero,
		ReturnedQuantity: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	line.calculate()
	return line, nil
}

func (l *PurchaseOrderLine) calculate() {
	l.LineTotal = l.Quantity.Mul(l.UnitPrice)
	l.TaxAmount = l.LineTotal.Mul(l.TaxRate).Div(hundred).Round(4)
}

// RemainingQuantity returns how much is still to be received
func (l *PurchaseOrderLine) RemainingQuantity() decimal.Decimal {
	return l.Quantity.Sub(l.ReceivedQuantity)
}

// IsFullyReceived returns true when everything ordered has arrived
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.ReceivedQuantity.GreaterThanOrEqual(l.Quantity)
}

// ReturnableQuantity is what has been received and not yet returned
func (l *PurchaseOrderLine) ReturnableQuantity() decimal.Decimal {
	return l.ReceivedQuantity.Sub(l.ReturnedQuantity)
}

// HasActivity reports whether anything was received or returned on the line
func (l *PurchaseOrderLine) HasActivity() bool {
	return l.ReceivedQuantity.IsPositive() || l.ReturnedQuantity.IsPositive()
}

func (l *PurchaseOrderLine) addReceived(delta decimal.Decimal) error {
	if !delta.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Received quantity must be positive")
	}
	if l.ReceivedQuantity.Add(delta).GreaterThan(l.Quantity) {
		return shared.NewDomainError(shared.CodeQuantityExceeded,
			fmt.Sprintf("Cannot receive %s on line %s: ordered %s, already received %s",
				delta.String(), l.ID, l.Quantity.String(), l.ReceivedQuantity.String()))
	}
	l.ReceivedQuantity = l.ReceivedQuantity.Add(delta)
	l.UpdatedAt = time.Now()
	return nil
}

func (l *PurchaseOrderLine) addReturned(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Returned quantity must be positive")
	}
	if l.ReturnedQuantity.Add(qty).GreaterThan(l.ReceivedQuantity) {
		return shared.NewDomainError(shared.CodeQuantityExceeded,
			fmt.Sprintf("Cannot return %s on line %s: received %s, already returned %s",
				qty.String(), l.ID, l.ReceivedQuantity.String(), l.ReturnedQuantity.String()))
	}
	l.ReturnedQuantity = l.ReturnedQuantity.Add(qty)
	l.UpdatedAt = time.Now()
	return nil
}

// PurchaseOrder is the aggregate root for a purchase from a supplier at one branch.
// GrandTotal always equals TotalAmount + TaxAmount. PaidAmount changes only through
// RecordPayment and ApplyRefund.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber          string
	SupplierID           uuid.UUID
	BranchID             uuid.UUID
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	DeliveryDate         *time.Time
	SupplierInvoiceRef   string
	Notes                string
	Lines                []PurchaseOrderLine
	TotalAmount          decimal.Decimal
	TaxAmount            decimal.Decimal
	GrandTotal           decimal.Decimal
	PaidAmount           decimal.Decimal
	Status               PurchaseOrderStatus
	SourceReturnID       *uuid.UUID // set on orders raised to replace returned goods
	CancelledAt          *time.Time
	CompletedAt          *time.Time
}

// NewPurchaseOrder creates a pending order with the given lines
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, supplierID, branchID uuid.UUID, lines []LineSpec) (*PurchaseOrder, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Branch ID cannot be empty")
	}

	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		SupplierID:          supplierID,
		BranchID:            branchID,
		OrderDate:           time.Now(),
		PaidAmount:          decimal.Zero,
		Status:              PurchaseOrderStatusPending,
	}
	if err := order.setLines(lines); err != nil {
		return nil, err
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

func (o *PurchaseOrder) setLines(specs []LineSpec) error {
	if len(specs) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Order must have at least one line")
	}
	lines := make([]PurchaseOrderLine, 0, len(specs))
	for _, spec := range specs {
		line, err := NewPurchaseOrderLine(o.ID, spec)
		if err != nil {
			return err
		}
		lines = append(lines, *line)
	}
	o.Lines = lines
	o.recalculateTotals()
	return nil
}

func (o *PurchaseOrder) recalculateTotals() {
	total := decimal.Zero
	tax := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal)
		tax = tax.Add(line.TaxAmount)
	}
	o.TotalAmount = total
	o.TaxAmount = tax
	o.GrandTotal = total.Add(tax)
}

// GetLine returns the line with the given ID, or nil
func (o *PurchaseOrder) GetLine(lineID uuid.UUID) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// HasActivity reports whether goods or money have moved against the order
func (o *PurchaseOrder) HasActivity() bool {
	if o.PaidAmount.IsPositive() {
		return true
	}
	for i := range o.Lines {
		if o.Lines[i].HasActivity() {
			return true
		}
	}
	return false
}

// OutstandingAmount is what is still owed to the supplier
func (o *PurchaseOrder) OutstandingAmount() decimal.Decimal {
	return o.GrandTotal.Sub(o.PaidAmount)
}

func (o *PurchaseOrder) ensureNotTerminal(action string) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot %s purchase order %s in %s status", action, o.OrderNumber, o.Status))
	}
	return nil
}

func (o *PurchaseOrder) transitionTo(target PurchaseOrderStatus) error {
	if o.Status == target {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Purchase order %s cannot move from %s to %s", o.OrderNumber, o.Status, target))
	}
	from := o.Status
	o.Status = target
	now := time.Now()
	switch target {
	case PurchaseOrderStatusCancelled:
		o.CancelledAt = &now
	case PurchaseOrderStatusCompleted:
		o.CompletedAt = &now
	}
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, from, target))
	return nil
}

// OrderPatch carries the editable header fields plus an optional full line replacement
type OrderPatch struct {
	ExpectedDeliveryDate *time.Time
	SupplierInvoiceRef   *string
	Notes                *string
	Lines                []LineSpec // nil keeps the current lines
}

// Update applies a patch. Lines can only be replaced while nothing has been
// received, returned or paid; otherwise that history would be lost.
func (o *PurchaseOrder) Update(patch OrderPatch) error {
	if err := o.ensureNotTerminal("update"); err != nil {
		return err
	}
	if patch.Lines != nil {
		if o.HasActivity() {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Lines of purchase order %s cannot be replaced after goods were received, returned or paid", o.OrderNumber))
		}
		if err := o.setLines(patch.Lines); err != nil {
			return err
		}
	}
	if patch.ExpectedDeliveryDate != nil {
		d := *patch.ExpectedDeliveryDate
		o.ExpectedDeliveryDate = &d
	}
	if patch.SupplierInvoiceRef != nil {
		o.SupplierInvoiceRef = strings.TrimSpace(*patch.SupplierInvoiceRef)
	}
	if patch.Notes != nil {
		o.Notes = *patch.Notes
	}
	o.IncrementVersion()
	return nil
}

// ReceiveLine is one (line, delta) pair of a receive call
type ReceiveLine struct {
	LineID   uuid.UUID
	Quantity decimal.Decimal
}

// ReceivedLine describes what a receive call applied to one line
type ReceivedLine struct {
	LineID    uuid.UUID
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Receive records arrived goods. Either every pair is applied or none is:
// all pairs are checked against a scratch copy of the lines first.
func (o *PurchaseOrder) Receive(items []ReceiveLine, deliveryDate *time.Time) ([]ReceivedLine, error) {
	if err := o.ensureNotTerminal("receive goods for"); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Receive items cannot be empty")
	}

	lines := make([]PurchaseOrderLine, len(o.Lines))
	copy(lines, o.Lines)
	index := make(map[uuid.UUID]int, len(lines))
	for i := range lines {
		index[lines[i].ID] = i
	}

	received := make([]ReceivedLine, 0, len(items))
	for _, item := range items {
		i, ok := index[item.LineID]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Line %s not found in purchase order %s", item.LineID, o.OrderNumber))
		}
		if err := lines[i].addReceived(item.Quantity); err != nil {
			return nil, err
		}
		received = append(received, ReceivedLine{
			LineID:    lines[i].ID,
			ItemID:    lines[i].ItemID,
			Quantity:  item.Quantity,
			UnitPrice: lines[i].UnitPrice,
		})
	}

	target := o.Status
	if derived := receivingStatus(lines); derived != PurchaseOrderStatusPending {
		target = derived
	}
	becameReceived := target == PurchaseOrderStatusReceived && o.Status != PurchaseOrderStatusReceived
	if err := o.transitionTo(target); err != nil {
		return nil, err
	}

	o.Lines = lines
	switch {
	case deliveryDate != nil:
		d := *deliveryDate
		o.DeliveryDate = &d
	case becameReceived:
		now := time.Now()
		o.DeliveryDate = &now
	}

	o.IncrementVersion()
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, received))
	return received, nil
}

// UpdateStatus is the administrative status change, e.g. RECEIVED -> COMPLETED.
// It goes through the same transition table as every other operation, and a
// receiving status must agree with the received quantities on the lines.
func (o *PurchaseOrder) UpdateStatus(target PurchaseOrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid purchase order status: %s", target))
	}
	if err := o.ensureNotTerminal("change status of"); err != nil {
		return err
	}
	if o.Status == target {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Purchase order %s is already %s", o.OrderNumber, target))
	}
	if target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusReceived {
		if derived := receivingStatus(o.Lines); derived != target {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Purchase order %s cannot be marked %s: its received quantities put it in %s",
					o.OrderNumber, target, derived))
		}
	}
	if err := o.transitionTo(target); err != nil {
		return err
	}
	o.IncrementVersion()
	return nil
}

// receivingStatus is the status the received quantities of lines imply:
// RECEIVED when every line is complete, PARTIALLY_RECEIVED when any line has
// goods, PENDING otherwise.
func receivingStatus(lines []PurchaseOrderLine) PurchaseOrderStatus {
	allReceived := len(lines) > 0
	anyReceived := false
	for i := range lines {
		if !lines[i].IsFullyReceived() {
			allReceived = false
		}
		if lines[i].ReceivedQuantity.IsPositive() {
			anyReceived = true
		}
	}
	switch {
	case allReceived:
		return PurchaseOrderStatusReceived
	case anyReceived:
		return PurchaseOrderStatusPartiallyReceived
	}
	return PurchaseOrderStatusPending
}

// Cancel moves a non-terminal order to CANCELLED
func (o *PurchaseOrder) Cancel(reason string) error {
	if err := o.ensureNotTerminal("cancel"); err != nil {
		return err
	}
	if err := o.transitionTo(PurchaseOrderStatusCancelled); err != nil {
		return err
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		o.appendNote("Cancelled: " + reason)
	}
	o.IncrementVersion()
	return nil
}

// EnsureDeletable fails when payments or received goods exist
func (o *PurchaseOrder) EnsureDeletable(paymentCount int64) error {
	if paymentCount > 0 || o.PaidAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Purchase order %s has payments and cannot be deleted", o.OrderNumber))
	}
	for i := range o.Lines {
		if o.Lines[i].ReceivedQuantity.IsPositive() {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Purchase order %s has received goods and cannot be deleted", o.OrderNumber))
		}
	}
	return nil
}

// RecordPayment adds money paid to the supplier
func (o *PurchaseOrder) RecordPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if o.Status == PurchaseOrderStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot pay cancelled purchase order %s", o.OrderNumber))
	}
	if o.PaidAmount.Add(amount).GreaterThan(o.GrandTotal) {
		return shared.NewDomainError(shared.CodePaymentExceeded,
			fmt.Sprintf("Payment %s exceeds outstanding amount %s", amount.String(), o.OutstandingAmount().String()))
	}
	o.PaidAmount = o.PaidAmount.Add(amount)
	o.IncrementVersion()
	o.AddDomainEvent(NewPurchaseOrderPaidEvent(o, amount))
	return nil
}

// ApplyRefund takes refunded money back off the paid amount
func (o *PurchaseOrder) ApplyRefund(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Refund amount must be positive")
	}
	if amount.GreaterThan(o.PaidAmount) {
		return shared.NewDomainError(shared.CodeInsufficientPaid,
			fmt.Sprintf("Refund %s exceeds paid amount %s on purchase order %s", amount.String(), o.PaidAmount.String(), o.OrderNumber))
	}
	o.PaidAmount = o.PaidAmount.Sub(amount)
	o.IncrementVersion()
	return nil
}

// RecordReturn books a confirmed return against a line
func (o *PurchaseOrder) RecordReturn(lineID uuid.UUID, qty decimal.Decimal) error {
	line := o.GetLine(lineID)
	if line == nil {
		return shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("Line %s not found in purchase order %s", lineID, o.OrderNumber))
	}
	if err := line.addReturned(qty); err != nil {
		return err
	}
	o.IncrementVersion()
	return nil
}

// NewReplacementOrder raises a pending order for goods sent back under a REPLACEMENT return.
// It copies supplier, branch and line pricing from the original.
func NewReplacementOrder(original *PurchaseOrder, line *PurchaseOrderLine, qty decimal.Decimal, orderNumber string, returnID uuid.UUID) (*PurchaseOrder, error) {
	if original == nil || line == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Original order and line are required")
	}
	order, err := NewPurchaseOrder(original.TenantID, orderNumber, original.SupplierID, original.BranchID, []LineSpec{{
		ItemID:    line.ItemID,
		Quantity:  qty,
		UnitPrice: line.UnitPrice,
		TaxRate:   line.TaxRate,
	}})
	if err != nil {
		return nil, err
	}
	id := returnID
	order.SourceReturnID = &id
	order.Notes = fmt.Sprintf("Replacement for %s", original.OrderNumber)
	return order, nil
}

func (o *PurchaseOrder) appendNote(note string) {
	if o.Notes == "" {
		o.Notes = note
		return
	}
	o.Notes = o.Notes + "\n" + note
}
