package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevEdward666/study-hub-app/app/models"
	"github.com/DevEdward666/study-hub-app/internal/pkg/notifier"
)

// fakeRepository is an in-memory Repository. It mirrors the atomic
// transition behavior of the GORM implementation closely enough to drive the
// engine: occupy and close are compare-and-set, debits clamp the balance.
type fakeRepository struct {
	tables        map[uint]*models.Table
	credits       map[uint]*models.UserCredits
	subscriptions map[uint]*models.UserSubscription
	creditSess    map[uint]*models.CreditSession
	subSess       map[uint]*models.SubscriptionSession
	transactions  []models.CreditTransaction
	nextSessionID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		tables:        make(map[uint]*models.Table),
		credits:       make(map[uint]*models.UserCredits),
		subscriptions: make(map[uint]*models.UserSubscription),
		creditSess:    make(map[uint]*models.CreditSession),
		subSess:       make(map[uint]*models.SubscriptionSession),
		nextSessionID: 1,
	}
}

func (f *fakeRepository) Transact(fn func(Repository) error) error {
	// The fake applies writes directly; rollback fidelity is not needed for
	// these scenarios since in-transaction checks fail before any write.
	return fn(f)
}

func (f *fakeRepository) GetTable(id uint) (*models.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (f *fakeRepository) GetUserCredits(userID uint) (*models.UserCredits, error) {
	c, ok := f.credits[userID]
	if !ok {
		c = &models.UserCredits{UserID: userID}
		f.credits[userID] = c
	}
	copy := *c
	return &copy, nil
}

func (f *fakeRepository) GetSubscription(id uint) (*models.UserSubscription, error) {
	s, ok := f.subscriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (f *fakeRepository) GetCreditSession(id uint) (*models.CreditSession, error) {
	s, ok := f.creditSess[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (f *fakeRepository) GetSubscriptionSession(id uint) (*models.SubscriptionSession, error) {
	s, ok := f.subSess[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (f *fakeRepository) UserHasOpenSession(userID uint) (bool, error) {
	for _, s := range f.creditSess {
		if s.UserID == userID && s.Status == models.SessionStatusActive {
			return true, nil
		}
	}
	for _, s := range f.subSess {
		if s.UserID == userID && s.Status == models.SessionStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) LockUserCredits(userID uint) (*models.UserCredits, error) {
	// Single-threaded fake; the lock reduces to a read.
	return f.GetUserCredits(userID)
}

func (f *fakeRepository) SubscriptionHasOpenSession(subscriptionID uint) (bool, error) {
	for _, s := range f.subSess {
		if s.SubscriptionID == subscriptionID && s.Status == models.SessionStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) OccupyTable(tableID uint) (bool, error) {
	t, ok := f.tables[tableID]
	if !ok {
		return false, ErrNotFound
	}
	if t.IsOccupied || t.IsDisabled {
		return false, nil
	}
	t.IsOccupied = true
	return true, nil
}

func (f *fakeRepository) FreeTable(tableID uint) error {
	if t, ok := f.tables[tableID]; ok {
		t.IsOccupied = false
	}
	return nil
}

func (f *fakeRepository) CreateCreditSession(s *models.CreditSession) error {
	s.ID = f.nextSessionID
	f.nextSessionID++
	copy := *s
	f.creditSess[s.ID] = &copy
	return nil
}

func (f *fakeRepository) CreateSubscriptionSession(s *models.SubscriptionSession) error {
	s.ID = f.nextSessionID
	f.nextSessionID++
	copy := *s
	f.subSess[s.ID] = &copy
	return nil
}

func (f *fakeRepository) ActivateSubscription(subscriptionID uint, at time.Time) error {
	if s, ok := f.subscriptions[subscriptionID]; ok && s.ActivationDate == nil {
		activation := at
		s.ActivationDate = &activation
	}
	return nil
}

func (f *fakeRepository) CloseCreditSession(sessionID uint, endTime time.Time, creditsUsed float64) (bool, error) {
	s, ok := f.creditSess[sessionID]
	if !ok || s.Status != models.SessionStatusActive {
		return false, nil
	}
	end := endTime
	s.Status = models.SessionStatusCompleted
	s.EndTime = &end
	s.CreditsUsed = creditsUsed
	return true, nil
}

func (f *fakeRepository) CloseSubscriptionSession(sessionID uint, endTime time.Time) (bool, error) {
	s, ok := f.subSess[sessionID]
	if !ok || s.Status != models.SessionStatusActive {
		return false, nil
	}
	end := endTime
	s.Status = models.SessionStatusCompleted
	s.EndTime = &end
	return true, nil
}

func (f *fakeRepository) DebitCredits(userID uint, charge float64, sessionID uint) error {
	c, ok := f.credits[userID]
	if !ok {
		c = &models.UserCredits{UserID: userID}
		f.credits[userID] = c
	}
	c.Balance = ClampDebit(c.Balance, charge)
	c.TotalSpent += charge
	sid := sessionID
	f.transactions = append(f.transactions, models.CreditTransaction{
		UserID:    userID,
		Amount:    charge,
		Type:      models.CreditTxTypeCharge,
		SessionID: &sid,
	})
	return nil
}

func (f *fakeRepository) UpdateSubscriptionUsage(subscriptionID uint, remaining, hoursUsed float64, expired bool, at time.Time) error {
	s, ok := f.subscriptions[subscriptionID]
	if !ok {
		return ErrNotFound
	}
	s.RemainingHours = remaining
	s.HoursUsed = hoursUsed
	if expired {
		s.Status = models.SubscriptionStatusExpired
		expiry := at
		s.ExpiryDate = &expiry
	}
	return nil
}

func (f *fakeRepository) StaleCreditSessions(olderThan time.Time) ([]models.CreditSession, error) {
	var out []models.CreditSession
	for _, s := range f.creditSess {
		if s.Status == models.SessionStatusActive && s.StartTime.Before(olderThan) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepository) StaleSubscriptionSessions(olderThan time.Time) ([]models.SubscriptionSession, error) {
	var out []models.SubscriptionSession
	for _, s := range f.subSess {
		if s.Status == models.SessionStatusActive && s.StartTime.Before(olderThan) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepository) OpenSubscriptionSessions() ([]models.SubscriptionSession, error) {
	var out []models.SubscriptionSession
	for _, s := range f.subSess {
		if s.Status == models.SessionStatusActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

// freezeTime pins the engine clock and returns a function to advance it.
func freezeTime(t *testing.T) (time.Time, func(time.Duration)) {
	t.Helper()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	current := base
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = time.Now })
	return base, func(d time.Duration) { current = current.Add(d) }
}

func newTestService(repo *fakeRepository) *Service {
	return NewService(repo, notifier.Noop{})
}

func seedTable(repo *fakeRepository, id uint, rate float64) *models.Table {
	table := &models.Table{ID: id, QRCode: "qr-token", HourlyRate: rate}
	repo.tables[id] = table
	return table
}

func TestStartCreditSessionPreconditions(t *testing.T) {
	freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 100}
	svc := newTestService(repo)
	ctx := context.Background()

	t.Run("unknown table", func(t *testing.T) {
		_, err := svc.StartCreditSession(ctx, 7, 99, "qr-token")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong qr token", func(t *testing.T) {
		_, err := svc.StartCreditSession(ctx, 7, 1, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("disabled table", func(t *testing.T) {
		repo.tables[1].IsDisabled = true
		_, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
		assert.ErrorIs(t, err, ErrResourceDisabled)
		repo.tables[1].IsDisabled = false
	})

	t.Run("insufficient balance", func(t *testing.T) {
		repo.credits[8] = &models.UserCredits{UserID: 8, Balance: 49.99}
		_, err := svc.StartCreditSession(ctx, 8, 1, "qr-token")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("balance exactly at rate passes the gate", func(t *testing.T) {
		repo.credits[9] = &models.UserCredits{UserID: 9, Balance: 50}
		session, err := svc.StartCreditSession(ctx, 9, 1, "qr-token")
		require.NoError(t, err)
		assert.True(t, repo.tables[1].IsOccupied)

		// Occupied table rejects the next starter
		_, err = svc.StartCreditSession(ctx, 7, 1, "qr-token")
		assert.ErrorIs(t, err, ErrResourceBusy)

		// Same user cannot open a second session elsewhere
		seedTable(repo, 2, 50).QRCode = "qr-2"
		_, err = svc.StartCreditSession(ctx, 9, 2, "qr-2")
		assert.ErrorIs(t, err, ErrUserAlreadyInSession)

		_, err = svc.EndCreditSession(ctx, session.ID, 9)
		require.NoError(t, err)
	})
}

// staleReadRepository serves the pre-transaction reads from a snapshot where
// every table is free and nobody holds a session, while the transactional
// writes run against live state. Two sequential starts through it interleave
// exactly like two concurrent requests that both passed the precondition
// reads before either committed.
type staleReadRepository struct {
	*fakeRepository
}

func (s *staleReadRepository) GetTable(id uint) (*models.Table, error) {
	t, err := s.fakeRepository.GetTable(id)
	if err != nil {
		return nil, err
	}
	t.IsOccupied = false
	return t, nil
}

func (s *staleReadRepository) UserHasOpenSession(uint) (bool, error) {
	return false, nil
}

func (s *staleReadRepository) SubscriptionHasOpenSession(uint) (bool, error) {
	return false, nil
}

func TestStartCreditSessionRaceSecondUserLosesTableCAS(t *testing.T) {
	// Two users race for the same table; both pass the precondition reads.
	// The loser must fail on the occupy compare-and-set, not double-book.
	freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 100}
	repo.credits[8] = &models.UserCredits{UserID: 8, Balance: 100}
	svc := NewService(&staleReadRepository{repo}, notifier.Noop{})
	ctx := context.Background()

	_, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)

	_, err = svc.StartCreditSession(ctx, 8, 1, "qr-token")
	assert.ErrorIs(t, err, ErrResourceBusy)

	assert.Len(t, repo.creditSess, 1)
	assert.True(t, repo.tables[1].IsOccupied)
}

func TestStartCreditSessionRaceSameUserTwoTables(t *testing.T) {
	// The same user races their own second start against a different free
	// table. The open-session check must hold inside the transaction.
	freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedTable(repo, 2, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 100}
	svc := NewService(&staleReadRepository{repo}, notifier.Noop{})
	ctx := context.Background()

	_, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)

	_, err = svc.StartCreditSession(ctx, 7, 2, "qr-token")
	assert.ErrorIs(t, err, ErrUserAlreadyInSession)
	assert.Len(t, repo.creditSess, 1)
}

func TestStartSubscriptionSessionRaceSingleActivePerSubscription(t *testing.T) {
	// Two starts against the same subscription on two free tables; at most
	// one Active session per subscription may survive.
	freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedTable(repo, 2, 50)
	seedSubscription(repo, 3, 7, 10)
	svc := NewService(&staleReadRepository{repo}, notifier.Noop{})
	ctx := context.Background()

	_, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)

	_, err = svc.StartSubscriptionSession(ctx, 7, 2, 3)
	assert.ErrorIs(t, err, ErrUserAlreadyInSession)

	active := 0
	for _, s := range repo.subSess {
		if s.SubscriptionID == 3 && s.Status == models.SessionStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
	assert.False(t, repo.tables[2].IsOccupied)
}

func TestEndCreditSessionBillsCeilingHours(t *testing.T) {
	// Scenario: rate 50, balance 500, 10 minutes elapsed -> 1 hour billed
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 500}
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)

	advance(10 * time.Minute)

	result, err := svc.EndCreditSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.False(t, result.AlreadyClosed)
	assert.Equal(t, int64(1), result.HoursBilled)
	assert.Equal(t, float64(50), result.CreditsUsed)
	assert.Equal(t, float64(450), result.NewBalance)

	assert.Equal(t, float64(450), repo.credits[7].Balance)
	assert.Equal(t, float64(50), repo.credits[7].TotalSpent)
	assert.False(t, repo.tables[1].IsOccupied)
	assert.Equal(t, models.SessionStatusCompleted, repo.creditSess[session.ID].Status)
	require.Len(t, repo.transactions, 1)
	assert.Equal(t, models.CreditTxTypeCharge, repo.transactions[0].Type)
}

func TestEndCreditSessionPartialHourRoundsUp(t *testing.T) {
	// Scenario: 1 hour 10 minutes elapsed -> 2 hours billed
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 500}
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)

	advance(time.Hour + 10*time.Minute)

	result, err := svc.EndCreditSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.HoursBilled)
	assert.Equal(t, float64(100), result.CreditsUsed)
	assert.Equal(t, float64(400), result.NewBalance)
}

func TestEndCreditSessionClampsBalanceButRecordsFullCharge(t *testing.T) {
	// Scenario: balance 60, rate 50, 2.2 hours elapsed -> charge 150,
	// balance clamps to 0 while spent and the session record the full 150.
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 60}
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)

	advance(2*time.Hour + 12*time.Minute)

	result, err := svc.EndCreditSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.HoursBilled)
	assert.Equal(t, float64(150), result.CreditsUsed)
	assert.Equal(t, float64(0), result.NewBalance)

	assert.Equal(t, float64(0), repo.credits[7].Balance)
	assert.Equal(t, float64(150), repo.credits[7].TotalSpent)
	assert.Equal(t, float64(150), repo.creditSess[session.ID].CreditsUsed)
}

func TestEndCreditSessionOwnership(t *testing.T) {
	freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 500}
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)

	_, err = svc.EndCreditSession(ctx, session.ID, 8)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestEndCreditSessionIdempotentDoubleClose(t *testing.T) {
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 500}
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)

	advance(30 * time.Minute)

	first, err := svc.EndCreditSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.False(t, first.AlreadyClosed)

	second, err := svc.EndCreditSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.True(t, second.AlreadyClosed)

	// Nothing billed twice
	assert.Equal(t, float64(450), repo.credits[7].Balance)
	assert.Equal(t, float64(50), repo.credits[7].TotalSpent)
	require.Len(t, repo.transactions, 1)
}

// staleCloseRepository lets a configurable number of session reads see the
// session still open after it was closed, replaying the loser's side of a
// close race.
type staleCloseRepository struct {
	*fakeRepository
	staleReads int
}

func (s *staleCloseRepository) GetCreditSession(id uint) (*models.CreditSession, error) {
	sess, err := s.fakeRepository.GetCreditSession(id)
	if err != nil {
		return nil, err
	}
	if s.staleReads > 0 {
		s.staleReads--
		sess.Status = models.SessionStatusActive
		sess.EndTime = nil
		sess.CreditsUsed = 0
	}
	return sess, nil
}

func TestEndCreditSessionCloseRaceLoser(t *testing.T) {
	// The loser reads the session as open, loses the status compare-and-set
	// inside the transaction, and must report the committed close without
	// debiting again.
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 500}
	stale := &staleCloseRepository{fakeRepository: repo}
	svc := NewService(stale, notifier.Noop{})
	ctx := context.Background()

	session, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)

	advance(30 * time.Minute)

	winner, err := svc.EndCreditSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.False(t, winner.AlreadyClosed)

	stale.staleReads = 1
	loser, err := svc.EndCreditSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.True(t, loser.AlreadyClosed)
	assert.Equal(t, float64(50), loser.CreditsUsed)

	assert.Equal(t, float64(450), repo.credits[7].Balance)
	assert.Equal(t, float64(50), repo.credits[7].TotalSpent)
	require.Len(t, repo.transactions, 1)
}

func seedSubscription(repo *fakeRepository, id, userID uint, remaining float64) *models.UserSubscription {
	sub := &models.UserSubscription{
		ID:             id,
		UserID:         userID,
		TotalHours:     remaining,
		RemainingHours: remaining,
		Status:         models.SubscriptionStatusActive,
	}
	repo.subscriptions[id] = sub
	return sub
}

func TestStartSubscriptionSessionActivatesOnFirstUse(t *testing.T) {
	base, _ := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedSubscription(repo, 3, 7, 10)
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)
	assert.True(t, repo.tables[1].IsOccupied)
	require.NotNil(t, repo.subscriptions[3].ActivationDate)
	assert.Equal(t, base, *repo.subscriptions[3].ActivationDate)
	assert.Equal(t, uint(3), session.SubscriptionID)
}

func TestStartSubscriptionSessionPreconditions(t *testing.T) {
	freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedSubscription(repo, 3, 7, 10)
	svc := newTestService(repo)
	ctx := context.Background()

	t.Run("not the owner", func(t *testing.T) {
		_, err := svc.StartSubscriptionSession(ctx, 8, 1, 3)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("cancelled subscription", func(t *testing.T) {
		seedSubscription(repo, 4, 7, 10).Status = models.SubscriptionStatusCancelled
		_, err := svc.StartSubscriptionSession(ctx, 7, 1, 4)
		assert.ErrorIs(t, err, ErrSubscriptionNotActive)
	})

	t.Run("exhausted subscription", func(t *testing.T) {
		seedSubscription(repo, 5, 7, 0)
		_, err := svc.StartSubscriptionSession(ctx, 7, 1, 5)
		assert.ErrorIs(t, err, ErrSubscriptionExhausted)
	})

	t.Run("subscription already bound to an open session", func(t *testing.T) {
		_, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
		require.NoError(t, err)

		seedTable(repo, 2, 50)
		_, err = svc.StartSubscriptionSession(ctx, 7, 2, 3)
		assert.ErrorIs(t, err, ErrUserAlreadyInSession)
	})
}

func TestEndSubscriptionSessionConsumesFractionalHours(t *testing.T) {
	// Scenario: remaining 10 hours, session runs 2.5h -> remaining 7.5,
	// hoursUsed 2.5, status stays active.
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedSubscription(repo, 3, 7, 10)
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)

	advance(2*time.Hour + 30*time.Minute)

	result, err := svc.EndSubscriptionSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.False(t, result.AlreadyClosed)
	assert.InDelta(t, 2.5, result.HoursConsumed, 1e-9)
	assert.InDelta(t, 7.5, result.RemainingHours, 1e-9)
	assert.InDelta(t, 2.5, result.HoursUsed, 1e-9)
	assert.False(t, result.Expired)

	assert.Equal(t, models.SubscriptionStatusActive, repo.subscriptions[3].Status)
	assert.False(t, repo.tables[1].IsOccupied)
}

func TestEndSubscriptionSessionClampsAndExpires(t *testing.T) {
	// Scenario: remaining 1.0 hour, session runs 1.5h -> remaining clamps
	// to 0 and the subscription expires.
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedSubscription(repo, 3, 7, 1)
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)

	advance(time.Hour + 30*time.Minute)

	result, err := svc.EndSubscriptionSession(ctx, session.ID, 7)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, result.HoursConsumed, 1e-9)
	assert.Equal(t, float64(0), result.RemainingHours)
	assert.True(t, result.Expired)

	assert.Equal(t, models.SubscriptionStatusExpired, repo.subscriptions[3].Status)
	require.NotNil(t, repo.subscriptions[3].ExpiryDate)
}

func TestPauseThenResumeConsumesOnlyElapsed(t *testing.T) {
	// Pause is close: two 1h sittings consume 2h total, nothing in between.
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedSubscription(repo, 3, 7, 10)
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)
	advance(time.Hour)
	_, err = svc.EndSubscriptionSession(ctx, first.ID, 7)
	require.NoError(t, err)

	// A long break while the session is closed costs nothing
	advance(5 * time.Hour)

	second, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)
	advance(time.Hour)
	result, err := svc.EndSubscriptionSession(ctx, second.ID, 7)
	require.NoError(t, err)

	assert.InDelta(t, 8, result.RemainingHours, 1e-9)
	assert.InDelta(t, 2, result.HoursUsed, 1e-9)
}

func TestForceCloseStaleSettlesSessions(t *testing.T) {
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedTable(repo, 2, 50).QRCode = "qr-2"
	repo.credits[7] = &models.UserCredits{UserID: 7, Balance: 500}
	seedSubscription(repo, 3, 8, 10)
	svc := newTestService(repo)
	ctx := context.Background()

	creditSession, err := svc.StartCreditSession(ctx, 7, 1, "qr-token")
	require.NoError(t, err)
	subSession, err := svc.StartSubscriptionSession(ctx, 8, 2, 3)
	require.NoError(t, err)

	advance(13 * time.Hour)

	closed, err := svc.ForceCloseStale(ctx, 12*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	assert.Equal(t, models.SessionStatusCompleted, repo.creditSess[creditSession.ID].Status)
	assert.Equal(t, models.SessionStatusCompleted, repo.subSess[subSession.ID].Status)
	assert.False(t, repo.tables[1].IsOccupied)
	assert.False(t, repo.tables[2].IsOccupied)

	// Credit side settled with the standard formulas: 13h * 50
	assert.Equal(t, float64(650), repo.creditSess[creditSession.ID].CreditsUsed)
	// Subscription side clamped and expired
	assert.Equal(t, float64(0), repo.subscriptions[3].RemainingHours)
	assert.Equal(t, models.SubscriptionStatusExpired, repo.subscriptions[3].Status)

	// A second sweep finds nothing
	closed, err = svc.ForceCloseStale(ctx, 12*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestWarnLowSubscriptions(t *testing.T) {
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedTable(repo, 2, 50).QRCode = "qr-2"
	seedSubscription(repo, 3, 7, 1) // one hour left
	seedSubscription(repo, 4, 8, 50)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)
	_, err = svc.StartSubscriptionSession(ctx, 8, 2, 4)
	require.NoError(t, err)

	advance(45 * time.Minute)

	// Another 30 minutes would push user 7 past their remaining hour
	warned, err := svc.WarnLowSubscriptions(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, warned)

	// The next sweep stays quiet for an already-warned session
	advance(5 * time.Minute)
	warned, err = svc.WarnLowSubscriptions(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, warned)
}

func TestWarnLowSubscriptionsForgetsClosedSessions(t *testing.T) {
	// Closing the warned session and opening a fresh one warns again.
	_, advance := freezeTime(t)
	repo := newFakeRepository()
	seedTable(repo, 1, 50)
	seedSubscription(repo, 3, 7, 2)
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)
	advance(90 * time.Minute)

	warned, err := svc.WarnLowSubscriptions(ctx, 60*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, warned)

	_, err = svc.EndSubscriptionSession(ctx, first.ID, 7)
	require.NoError(t, err)

	second, err := svc.StartSubscriptionSession(ctx, 7, 1, 3)
	require.NoError(t, err)
	advance(15 * time.Minute)

	warned, err = svc.WarnLowSubscriptions(ctx, 60*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, warned)
	assert.NotEqual(t, first.ID, second.ID)
}
