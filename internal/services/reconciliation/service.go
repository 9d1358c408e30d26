package reconciliation

import (
	"encoding/json"
	"log"
	"time"

	"receipt-reconciliation-backend/internal/apperr"
	"receipt-reconciliation-backend/internal/models"
	"receipt-reconciliation-backend/internal/repository"
	"receipt-reconciliation-backend/internal/services/matching"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service runs the automatic reconciliation pass: clear previous automatic
// matches, greedily pair eligible receipts with eligible bank debits, and
// persist the accepted pairs. The whole pass is one DB transaction, so a
// reader never observes automatic matches cleared but not yet replaced.
//
// Assignment is a single left-to-right greedy pass over receipts sorted by
// date descending. It is NOT globally optimal: an early receipt can consume
// a bank record that a later receipt would have matched better. That is the
// established contract; switching to optimal bipartite assignment would be a
// deliberate behavior change, not a fix.
type Service struct {
	db          *gorm.DB
	receiptRepo *repository.ReceiptRepository
	bankRepo    *repository.BankRecordRepository
}

func NewService(
	db *gorm.DB,
	receiptRepo *repository.ReceiptRepository,
	bankRepo *repository.BankRecordRepository,
) *Service {
	return &Service{
		db:          db,
		receiptRepo: receiptRepo,
		bankRepo:    bankRepo,
	}
}

// RunSummary is what one reconciliation run reports back.
type RunSummary struct {
	TotalMatches         int `json:"total_matches"`
	UnmatchedReceipts    int `json:"unmatched_receipts"`
	UnmatchedBankRecords int `json:"unmatched_bank_records"`
}

// State is the current reconciliation picture: every match plus the
// records on either side that have no match yet.
type State struct {
	Matches     []models.ReconciliationMatch `json:"matches"`
	ReceiptOnly []models.ReceiptRecord       `json:"receipt_only"`
	BankOnly    []models.BankRecord          `json:"bank_only"`
	Summary     RunSummary                   `json:"summary"`
}

// Run executes one automatic reconciliation pass. Running it twice with no
// new data produces the identical automatic-match set; manual matches are
// never touched.
func (s *Service) Run() (*RunSummary, error) {
	summary := &RunSummary{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Manual matches survive the run; their ids are off-limits to
		// the greedy pass.
		var manual []models.ReconciliationMatch
		if err := tx.Where("is_manual = ?", true).Find(&manual).Error; err != nil {
			return err
		}
		usedReceipts := make(map[uuid.UUID]bool, len(manual))
		usedBank := make(map[uuid.UUID]bool, len(manual))
		for _, m := range manual {
			usedReceipts[m.ReceiptID] = true
			usedBank[m.BankRecordID] = true
		}

		if err := tx.Where("is_manual = ?", false).
			Delete(&models.ReconciliationMatch{}).Error; err != nil {
			return err
		}

		receipts, err := repository.NewReceiptRepository(tx).FindEligible()
		if err != nil {
			return err
		}
		bankRecords, err := repository.NewBankRecordRepository(tx).FindEligibleDebits()
		if err != nil {
			return err
		}

		newMatches := s.greedyAssign(receipts, bankRecords, usedReceipts, usedBank)
		if len(newMatches) > 0 {
			if err := tx.Create(&newMatches).Error; err != nil {
				return err
			}
		}

		// greedyAssign marked everything it consumed, and manual ids were
		// marked up front, so whatever is left unmarked is unmatched.
		summary.TotalMatches = len(newMatches)
		for _, r := range receipts {
			if !usedReceipts[r.ID] {
				summary.UnmatchedReceipts++
			}
		}
		for _, b := range bankRecords {
			if !usedBank[b.ID] {
				summary.UnmatchedBankRecords++
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, err, "reconciliation run did not commit")
	}

	log.Printf("reconciliation run: %d matched, %d receipts unmatched, %d bank records unmatched",
		summary.TotalMatches, summary.UnmatchedReceipts, summary.UnmatchedBankRecords)
	return summary, nil
}

// greedyAssign iterates receipts in load order; each takes its best-scoring
// unconsumed bank candidate, accepted only at or above the threshold.
// First-seen wins ties.
func (s *Service) greedyAssign(
	receipts []models.ReceiptRecord,
	bankRecords []models.BankRecord,
	usedReceipts, usedBank map[uuid.UUID]bool,
) []models.ReconciliationMatch {
	var matches []models.ReconciliationMatch

	for i := range receipts {
		receipt := &receipts[i]
		if usedReceipts[receipt.ID] {
			continue
		}

		var best *models.BankRecord
		var bestScore matching.Breakdown
		for j := range bankRecords {
			bank := &bankRecords[j]
			if usedBank[bank.ID] {
				continue
			}
			score := matching.Score(receipt, bank)
			if best == nil || score.Total > bestScore.Total {
				best = bank
				bestScore = score
			}
		}

		if best == nil || bestScore.Total < matching.AcceptThreshold {
			continue
		}

		usedReceipts[receipt.ID] = true
		usedBank[best.ID] = true

		details, _ := json.Marshal(bestScore)
		matches = append(matches, models.ReconciliationMatch{
			ID:              uuid.New(),
			ReceiptID:       receipt.ID,
			BankRecordID:    best.ID,
			ConfidenceScore: bestScore.Total,
			MatchType:       models.MatchTypeForScore(bestScore.Total),
			IsManual:        false,
			MatchDetails:    details,
			CreatedAt:       time.Now(),
		})
	}
	return matches
}

// GetState assembles the full reconciliation picture for display.
func (s *Service) GetState() (*State, error) {
	var matches []models.ReconciliationMatch
	if err := s.db.Order("created_at DESC, id ASC").Find(&matches).Error; err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, err, "loading matches")
	}

	usedReceipts := make(map[uuid.UUID]bool, len(matches))
	usedBank := make(map[uuid.UUID]bool, len(matches))
	for _, m := range matches {
		usedReceipts[m.ReceiptID] = true
		usedBank[m.BankRecordID] = true
	}

	receipts, err := s.receiptRepo.FindEligible()
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, err, "loading receipts")
	}
	bankRecords, err := s.bankRepo.FindEligibleDebits()
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, err, "loading bank records")
	}

	state := &State{Matches: matches}
	for _, r := range receipts {
		if !usedReceipts[r.ID] {
			state.ReceiptOnly = append(state.ReceiptOnly, r)
		}
	}
	for _, b := range bankRecords {
		if !usedBank[b.ID] {
			state.BankOnly = append(state.BankOnly, b)
		}
	}
	state.Summary = RunSummary{
		TotalMatches:         len(matches),
		UnmatchedReceipts:    len(state.ReceiptOnly),
		UnmatchedBankRecords: len(state.BankOnly),
	}
	return state, nil
}
