// Package models holds the GORM rows behind the ledger's repositories.
//
// Domain types carry no ORM tags. Each model converts with ToDomain and an XxxModelFromDomain constructor,
// and the repositories only hand domain values across the package boundary.
//
//   - base.go: shared ID, tenant and version columns
//   - masterdata.go: branches, suppliers, items and payment methods read through the Directory
//   - sequence.go: per-branch document number counters
//   - inventory.go: branch stock rows and the movement log
//   - trade.go: purchase orders, lines, payments, returns and refunds
package models
