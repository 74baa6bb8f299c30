package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/DevEdward666/study-hub-app/app/models"
	"github.com/DevEdward666/study-hub-app/internal/pkg/metrics"
	"github.com/DevEdward666/study-hub-app/internal/pkg/notifier"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// Service is the table occupancy and billing engine. All occupancy and
// ledger transitions go through it; every start or close commits atomically
// or not at all.
type Service struct {
	repo     Repository
	notifier notifier.Notifier

	// sessions already warned about low remaining hours; pruned on close
	warnedMu sync.Mutex
	warned   map[uint]struct{}
}

// NewService creates an engine from an injected repository and notifier.
func NewService(repo Repository, n notifier.Notifier) *Service {
	return &Service{repo: repo, notifier: n, warned: make(map[uint]struct{})}
}

// NewServiceFromDB creates an engine from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), notifier.New(db))
}

// countStartRejection maps a failed start transition onto the rejection
// counter.
func countStartRejection(err error) {
	switch {
	case errors.Is(err, ErrResourceBusy):
		metrics.StartRejections.WithLabelValues("busy").Inc()
	case errors.Is(err, ErrUserAlreadyInSession):
		metrics.StartRejections.WithLabelValues("user_in_session").Inc()
	case errors.Is(err, ErrInsufficientFunds):
		metrics.StartRejections.WithLabelValues("insufficient_funds").Inc()
	case errors.Is(err, ErrSubscriptionNotActive):
		metrics.StartRejections.WithLabelValues("subscription_inactive").Inc()
	case errors.Is(err, ErrSubscriptionExhausted):
		metrics.StartRejections.WithLabelValues("subscription_exhausted").Inc()
	}
}

// StartCreditSession occupies a table for pay-per-use billing. The presented
// QR token must match the table's token and the user's balance must cover at
// least one hour at the table's rate; the actual charge is unknown until
// close.
func (s *Service) StartCreditSession(ctx context.Context, userID, tableID uint, presentedQR string) (*models.CreditSession, error) {
	table, err := s.repo.GetTable(tableID)
	if err != nil {
		return nil, err
	}
	if table.QRCode != presentedQR {
		metrics.StartRejections.WithLabelValues("invalid_credential").Inc()
		return nil, ErrInvalidCredential
	}
	if table.IsDisabled {
		metrics.StartRejections.WithLabelValues("disabled").Inc()
		return nil, ErrResourceDisabled
	}
	if table.IsOccupied {
		metrics.StartRejections.WithLabelValues("busy").Inc()
		return nil, ErrResourceBusy
	}

	session := &models.CreditSession{
		UserID:    userID,
		TableID:   tableID,
		StartTime: timeNow(),
		Status:    models.SessionStatusActive,
	}
	err = s.repo.Transact(func(r Repository) error {
		// The credit row lock serializes starts by the same user; the
		// open-session and balance checks below see every committed session.
		credits, err := r.LockUserCredits(userID)
		if err != nil {
			return err
		}
		inSession, err := r.UserHasOpenSession(userID)
		if err != nil {
			return err
		}
		if inSession {
			return ErrUserAlreadyInSession
		}
		if credits.Balance < table.HourlyRate {
			return ErrInsufficientFunds
		}
		occupied, err := r.OccupyTable(tableID)
		if err != nil {
			return err
		}
		if !occupied {
			return ErrResourceBusy
		}
		return r.CreateCreditSession(session)
	})
	if err != nil {
		countStartRejection(err)
		return nil, err
	}

	metrics.SessionsStarted.WithLabelValues(KindCredit).Inc()
	s.notifier.Notify(ctx, notifier.Event{
		Kind:      models.NotificationSessionStart,
		UserID:    userID,
		SessionID: session.ID,
		Content:   fmt.Sprintf("Credit session started on table %d", tableID),
	})
	return session, nil
}

// EndCreditSession closes a credit session, billing whole hours rounded up
// with a one hour minimum. The balance is clamped at zero while the full
// charge is recorded as spent. Closing an already-closed session is an
// idempotent no-op reported through AlreadyClosed.
func (s *Service) EndCreditSession(ctx context.Context, sessionID, callerUserID uint) (*CreditCloseResult, error) {
	session, err := s.repo.GetCreditSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != callerUserID {
		return nil, ErrUnauthorized
	}
	return s.closeCreditSession(ctx, session)
}

func (s *Service) closeCreditSession(ctx context.Context, session *models.CreditSession) (*CreditCloseResult, error) {
	now := timeNow()
	if !session.IsOpen() {
		return creditAlreadyClosed(session, now), nil
	}

	table, err := s.repo.GetTable(session.TableID)
	if err != nil {
		return nil, err
	}
	credits, err := s.repo.GetUserCredits(session.UserID)
	if err != nil {
		return nil, err
	}

	duration := now.Sub(session.StartTime)
	hours, charge := CreditCharge(duration, table.HourlyRate)
	newBalance := credits.Balance - ClampDebit(credits.Balance, charge)

	err = s.repo.Transact(func(r Repository) error {
		closed, err := r.CloseCreditSession(session.ID, now, charge)
		if err != nil {
			return err
		}
		if !closed {
			return ErrSessionAlreadyClosed
		}
		if err := r.DebitCredits(session.UserID, charge, session.ID); err != nil {
			return err
		}
		return r.FreeTable(session.TableID)
	})
	if err != nil {
		if errors.Is(err, ErrSessionAlreadyClosed) {
			// Lost the close race; report the committed outcome.
			committed, rerr := s.repo.GetCreditSession(session.ID)
			if rerr != nil {
				return nil, rerr
			}
			return creditAlreadyClosed(committed, now), nil
		}
		return nil, err
	}

	metrics.SessionsClosed.WithLabelValues(KindCredit).Inc()
	metrics.CreditsCharged.Add(charge)
	s.notifier.Notify(ctx, notifier.Event{
		Kind:      models.NotificationSessionEnd,
		UserID:    session.UserID,
		SessionID: session.ID,
		Content:   fmt.Sprintf("Credit session ended after %s, %.2f credits charged", duration.Round(time.Second), charge),
	})

	return &CreditCloseResult{
		SessionID:   session.ID,
		Duration:    duration,
		DurationMs:  duration.Milliseconds(),
		HoursBilled: hours,
		CreditsUsed: charge,
		NewBalance:  newBalance,
	}, nil
}

func creditAlreadyClosed(session *models.CreditSession, now time.Time) *CreditCloseResult {
	duration := session.Duration(now)
	return &CreditCloseResult{
		SessionID:     session.ID,
		Duration:      duration,
		DurationMs:    duration.Milliseconds(),
		HoursBilled:   BillableHours(duration),
		CreditsUsed:   session.CreditsUsed,
		AlreadyClosed: true,
	}
}

// StartSubscriptionSession occupies a table against a pre-paid hour pool.
// Nothing is debited at start; consumption is settled at close so an
// abandoned session cannot silently drain hours beyond wall-clock time.
func (s *Service) StartSubscriptionSession(ctx context.Context, userID, tableID, subscriptionID uint) (*models.SubscriptionSession, error) {
	table, err := s.repo.GetTable(tableID)
	if err != nil {
		return nil, err
	}
	if table.IsDisabled {
		metrics.StartRejections.WithLabelValues("disabled").Inc()
		return nil, ErrResourceDisabled
	}
	if table.IsOccupied {
		metrics.StartRejections.WithLabelValues("busy").Inc()
		return nil, ErrResourceBusy
	}

	sub, err := s.repo.GetSubscription(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrUnauthorized
	}
	if sub.Status != models.SubscriptionStatusActive {
		metrics.StartRejections.WithLabelValues("subscription_inactive").Inc()
		return nil, ErrSubscriptionNotActive
	}
	if sub.RemainingHours <= 0 {
		metrics.StartRejections.WithLabelValues("subscription_exhausted").Inc()
		return nil, ErrSubscriptionExhausted
	}

	now := timeNow()
	session := &models.SubscriptionSession{
		UserID:         userID,
		TableID:        tableID,
		SubscriptionID: subscriptionID,
		StartTime:      now,
		Status:         models.SessionStatusActive,
	}
	err = s.repo.Transact(func(r Repository) error {
		// Serialized on the owner's credit row: the subscription belongs to
		// exactly one user, so two starts against the same subscription, or
		// the same user on two tables, cannot both pass the checks below.
		if _, err := r.LockUserCredits(userID); err != nil {
			return err
		}
		inSession, err := r.UserHasOpenSession(userID)
		if err != nil {
			return err
		}
		if !inSession {
			inSession, err = r.SubscriptionHasOpenSession(subscriptionID)
			if err != nil {
				return err
			}
		}
		if inSession {
			return ErrUserAlreadyInSession
		}
		cur, err := r.GetSubscription(subscriptionID)
		if err != nil {
			return err
		}
		if cur.Status != models.SubscriptionStatusActive {
			return ErrSubscriptionNotActive
		}
		if cur.RemainingHours <= 0 {
			return ErrSubscriptionExhausted
		}
		occupied, err := r.OccupyTable(tableID)
		if err != nil {
			return err
		}
		if !occupied {
			return ErrResourceBusy
		}
		if err := r.CreateSubscriptionSession(session); err != nil {
			return err
		}
		if cur.ActivationDate == nil {
			return r.ActivateSubscription(subscriptionID, now)
		}
		return nil
	})
	if err != nil {
		countStartRejection(err)
		return nil, err
	}

	metrics.SessionsStarted.WithLabelValues(KindSubscription).Inc()
	s.notifier.Notify(ctx, notifier.Event{
		Kind:      models.NotificationSessionStart,
		UserID:    userID,
		SessionID: session.ID,
		Content:   fmt.Sprintf("Subscription session started on table %d", tableID),
	})
	return session, nil
}

// EndSubscriptionSession closes a subscription session, debiting fractional
// hours with no rounding. Pause and end are the same transition; a later
// resume opens a fresh session against the same subscription. Remaining
// hours clamp at zero, and the subscription expires at exactly zero.
func (s *Service) EndSubscriptionSession(ctx context.Context, sessionID, callerUserID uint) (*SubscriptionCloseResult, error) {
	session, err := s.repo.GetSubscriptionSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != callerUserID {
		return nil, ErrUnauthorized
	}
	return s.closeSubscriptionSession(ctx, session)
}

func (s *Service) closeSubscriptionSession(ctx context.Context, session *models.SubscriptionSession) (*SubscriptionCloseResult, error) {
	now := timeNow()
	if !session.IsOpen() {
		return subscriptionAlreadyClosed(session, now), nil
	}

	sub, err := s.repo.GetSubscription(session.SubscriptionID)
	if err != nil {
		return nil, err
	}

	duration := now.Sub(session.StartTime)
	consumed := ConsumedHours(duration)
	remaining, expired := ApplyConsumption(sub.RemainingHours, consumed)
	hoursUsed := sub.TotalHours - remaining

	err = s.repo.Transact(func(r Repository) error {
		closed, err := r.CloseSubscriptionSession(session.ID, now)
		if err != nil {
			return err
		}
		if !closed {
			return ErrSessionAlreadyClosed
		}
		if err := r.UpdateSubscriptionUsage(session.SubscriptionID, remaining, hoursUsed, expired, now); err != nil {
			return err
		}
		return r.FreeTable(session.TableID)
	})
	if err != nil {
		if errors.Is(err, ErrSessionAlreadyClosed) {
			committed, rerr := s.repo.GetSubscriptionSession(session.ID)
			if rerr != nil {
				return nil, rerr
			}
			return subscriptionAlreadyClosed(committed, now), nil
		}
		return nil, err
	}

	metrics.SessionsClosed.WithLabelValues(KindSubscription).Inc()
	metrics.SubscriptionHoursConsumed.Add(consumed)
	s.notifier.Notify(ctx, notifier.Event{
		Kind:      models.NotificationSessionEnd,
		UserID:    session.UserID,
		SessionID: session.ID,
		Content:   fmt.Sprintf("Subscription session ended after %s, %.2f hours remaining", duration.Round(time.Second), remaining),
	})

	return &SubscriptionCloseResult{
		SessionID:      session.ID,
		SubscriptionID: session.SubscriptionID,
		Duration:       duration,
		DurationMs:     duration.Milliseconds(),
		HoursConsumed:  consumed,
		RemainingHours: remaining,
		HoursUsed:      hoursUsed,
		Expired:        expired,
	}, nil
}

func subscriptionAlreadyClosed(session *models.SubscriptionSession, now time.Time) *SubscriptionCloseResult {
	duration := now.Sub(session.StartTime)
	if session.EndTime != nil {
		duration = session.EndTime.Sub(session.StartTime)
	}
	return &SubscriptionCloseResult{
		SessionID:      session.ID,
		SubscriptionID: session.SubscriptionID,
		Duration:       duration,
		DurationMs:     duration.Milliseconds(),
		AlreadyClosed:  true,
	}
}

// ForceCloseStale closes every session open longer than maxAge, applying the
// standard close formulas as of now. It is the reconciliation entry point
// for the background sweep; it never bypasses the atomic close transitions.
func (s *Service) ForceCloseStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := timeNow().Add(-maxAge)
	closed := 0

	creditSessions, err := s.repo.StaleCreditSessions(cutoff)
	if err != nil {
		return closed, err
	}
	for i := range creditSessions {
		session := creditSessions[i]
		res, err := s.closeCreditSession(ctx, &session)
		if err != nil {
			log.Errorf("[Billing] force close credit session %d failed: %v", session.ID, err)
			continue
		}
		if !res.AlreadyClosed {
			closed++
			metrics.SessionsForceClosed.Inc()
		}
	}

	subSessions, err := s.repo.StaleSubscriptionSessions(cutoff)
	if err != nil {
		return closed, err
	}
	for i := range subSessions {
		session := subSessions[i]
		res, err := s.closeSubscriptionSession(ctx, &session)
		if err != nil {
			log.Errorf("[Billing] force close subscription session %d failed: %v", session.ID, err)
			continue
		}
		if !res.AlreadyClosed {
			closed++
			metrics.SessionsForceClosed.Inc()
		}
	}

	return closed, nil
}

// WarnLowSubscriptions emits a session-warning for every open subscription
// session whose projected consumption reaches the remaining pool within the
// warning window. Each session is warned at most once; the warned set is
// pruned as sessions close. Purely advisory; it never closes anything.
func (s *Service) WarnLowSubscriptions(ctx context.Context, window time.Duration) (int, error) {
	sessions, err := s.repo.OpenSubscriptionSessions()
	if err != nil {
		return 0, err
	}

	s.warnedMu.Lock()
	defer s.warnedMu.Unlock()

	open := make(map[uint]struct{}, len(sessions))
	for i := range sessions {
		open[sessions[i].ID] = struct{}{}
	}
	for id := range s.warned {
		if _, ok := open[id]; !ok {
			delete(s.warned, id)
		}
	}

	now := timeNow()
	warned := 0
	for i := range sessions {
		session := sessions[i]
		if _, ok := s.warned[session.ID]; ok {
			continue
		}
		sub, err := s.repo.GetSubscription(session.SubscriptionID)
		if err != nil {
			log.Errorf("[Billing] warn: load subscription %d failed: %v", session.SubscriptionID, err)
			continue
		}
		projected := ConsumedHours(now.Add(window).Sub(session.StartTime))
		if projected < sub.RemainingHours {
			continue
		}
		s.notifier.Notify(ctx, notifier.Event{
			Kind:      models.NotificationSessionWarning,
			UserID:    session.UserID,
			SessionID: session.ID,
			Content:   fmt.Sprintf("Subscription hours nearly used up: %.2f remaining", sub.RemainingHours),
		})
		s.warned[session.ID] = struct{}{}
		warned++
	}
	return warned, nil
}
