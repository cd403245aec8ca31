package battle

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"

	"github.com/medarena/medquiz/internal/metrics"
	"github.com/medarena/medquiz/internal/question"
	httperrors "github.com/medarena/medquiz/pkg/http/errors"
	"github.com/medarena/medquiz/pkg/http/ws"
)

// Config groups battle gameplay tunables.
type Config struct {
	QuestionCount      int
	PerQuestionSeconds int
	CountdownSeconds   int
	CountdownTick      time.Duration
	RevealDelay        time.Duration
	AnswerGrace        time.Duration // slack past the client timer before forcing no-answers
	FinishedRoomGrace  time.Duration // retention after finished, for result delivery
	TicketTTL          time.Duration
	SweepInterval      time.Duration
}

func (c Config) withDefaults() Config {
	if c.QuestionCount <= 0 {
		c.QuestionCount = 10
	}
	if c.PerQuestionSeconds <= 0 {
		c.PerQuestionSeconds = 15
	}
	if c.CountdownSeconds <= 0 {
		c.CountdownSeconds = 3
	}
	if c.CountdownTick <= 0 {
		c.CountdownTick = time.Second
	}
	if c.RevealDelay <= 0 {
		c.RevealDelay = 2 * time.Second
	}
	if c.AnswerGrace <= 0 {
		c.AnswerGrace = 3 * time.Second
	}
	if c.FinishedRoomGrace <= 0 {
		c.FinishedRoomGrace = 30 * time.Second
	}
	if c.TicketTTL <= 0 {
		c.TicketTTL = 5 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	return c
}

// Notifier delivers protocol messages to connections and rooms. Implemented
// by the WebSocket hub; faked in tests.
type Notifier interface {
	Send(connID uuid.UUID, msg ws.Message) error
	Broadcast(roomID string, msg ws.Message) error
	JoinRoom(roomID string, connID uuid.UUID)
	DropRoom(roomID string)
}

// QuestionSource supplies question sequences for new rooms.
type QuestionSource interface {
	Pick(ctx context.Context, count int) ([]question.BattleQuestion, error)
}

// XPAwarder credits experience after a battle. May be nil.
type XPAwarder interface {
	AwardXP(ctx context.Context, userID, displayName string, xp int) error
}

// Service owns all battle state: registered identities, the matchmaking
// queue, private-room tickets and the active-rooms table. Everything is
// injected and instance-scoped, so lifecycle and test isolation belong to the
// instantiator rather than package globals.
type Service struct {
	cfg       Config
	logger    zerolog.Logger
	questions QuestionSource
	xp        XPAwarder
	notifier  Notifier
	queue     *Queue
	tickets   *TicketBox
	now       func() time.Time
	newRoomID func() string

	mu         sync.Mutex
	identities map[uuid.UUID]Identity
	rooms      map[string]*Room
	roomByConn map[uuid.UUID]string
	deadlines  map[string]*time.Timer
}

// ServiceOptions carries optional service dependencies.
type ServiceOptions struct {
	Rand *rand.Rand       // injectable for deterministic question selection and codes
	Now  func() time.Time // injectable clock
	XP   XPAwarder
}

// NewService constructs the battle service.
func NewService(cfg Config, questions QuestionSource, notifier Notifier, opts ServiceOptions, logger zerolog.Logger) *Service {
	cfg = cfg.withDefaults()
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		cfg:        cfg,
		logger:     logger,
		questions:  questions,
		xp:         opts.XP,
		notifier:   notifier,
		queue:      NewQueue(),
		tickets:    NewTicketBox(cfg.TicketTTL, rng, now),
		now:        now,
		newRoomID:  shortuuid.New,
		identities: make(map[uuid.UUID]Identity),
		rooms:      make(map[string]*Room),
		roomByConn: make(map[uuid.UUID]string),
		deadlines:  make(map[string]*time.Timer),
	}
}

// RunTicketJanitor periodically sweeps expired private-room tickets until the
// context is canceled.
func (s *Service) RunTicketJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := s.tickets.Sweep(); dropped > 0 {
				s.logger.Debug().Int("dropped", dropped).Msg("expired private tickets swept")
			}
		}
	}
}

// Register attaches a client identity to a connection.
func (s *Service) Register(connID uuid.UUID, payload ws.RegisterPayload) error {
	if payload.DisplayName == "" {
		return s.sendError(connID, httperrors.ErrCodeInvalidPayload, "display_name required")
	}

	s.mu.Lock()
	s.identities[connID] = Identity{
		UserID:      payload.UserID,
		DisplayName: payload.DisplayName,
		Level:       payload.Level,
	}
	s.mu.Unlock()

	return s.notifier.Send(connID, ws.NewMessage(ws.TypeRegistered, ws.RegisteredPayload{
		ConnectionID: connID.String(),
	}))
}

// JoinQueue enqueues a registered connection; when a pair forms, a ranked
// room is created immediately.
func (s *Service) JoinQueue(ctx context.Context, connID uuid.UUID) error {
	if _, ok := s.identity(connID); !ok {
		return s.sendError(connID, httperrors.ErrCodeRegistrationNeeded, ErrNotRegistered.Error())
	}

	position, pair := s.queue.Join(connID, s.now())
	metrics.QueueDepth.Set(float64(s.queue.Len()))

	if pair == nil {
		return s.notifier.Send(connID, ws.NewMessage(ws.TypeQueueJoined, ws.QueueJoinedPayload{
			Position: position,
		}))
	}
	return s.createRoom(ctx, pair[0], pair[1], true)
}

// LeaveQueue removes a connection from the queue.
func (s *Service) LeaveQueue(connID uuid.UUID) error {
	s.queue.Leave(connID)
	metrics.QueueDepth.Set(float64(s.queue.Len()))
	return s.notifier.Send(connID, ws.NewMessage(ws.TypeQueueLeft, nil))
}

// CreatePrivateRoom issues a shareable room code to the host.
func (s *Service) CreatePrivateRoom(connID uuid.UUID) error {
	if _, ok := s.identity(connID); !ok {
		return s.sendError(connID, httperrors.ErrCodeRegistrationNeeded, ErrNotRegistered.Error())
	}

	ticket := s.tickets.Create(connID)
	s.logger.Info().Str("room_code", ticket.Code).Str("host_conn", connID.String()).Msg("private room created")

	return s.notifier.Send(connID, ws.NewMessage(ws.TypePrivateRoomCreated, ws.PrivateRoomCreatedPayload{
		RoomCode:       ticket.Code,
		ExpiresSeconds: int(s.tickets.TTL().Seconds()),
	}))
}

// JoinPrivateRoom claims a ticket and starts an unranked room with the host.
func (s *Service) JoinPrivateRoom(ctx context.Context, connID uuid.UUID, code string) error {
	if _, ok := s.identity(connID); !ok {
		return s.sendError(connID, httperrors.ErrCodeRegistrationNeeded, ErrNotRegistered.Error())
	}

	ticket, ok := s.tickets.Claim(code)
	if !ok {
		return s.sendError(connID, httperrors.ErrCodeRoomNotFound, ErrTicketNotFound.Error())
	}
	if ticket.HostConnID == connID {
		return s.sendError(connID, httperrors.ErrCodeInvalidRequest, ErrSelfJoin.Error())
	}
	if _, hostRegistered := s.identity(ticket.HostConnID); !hostRegistered {
		return s.sendError(connID, httperrors.ErrCodeRoomNotFound, "host is no longer connected")
	}

	return s.createRoom(ctx, ticket.HostConnID, connID, false)
}

// PlayerReady records a ready signal; once both players are ready the
// countdown begins.
func (s *Service) PlayerReady(connID uuid.UUID, roomID string) error {
	room, ok := s.room(roomID)
	if !ok {
		return s.sendError(connID, httperrors.ErrCodeRoomNotFound, "room not found")
	}

	both, states, err := room.MarkReady(connID)
	if err != nil {
		return s.sendError(connID, httperrors.ErrCodeInvalidRequest, err.Error())
	}

	_ = s.notifier.Broadcast(roomID, ws.NewMessage(ws.TypePlayerReadyUpdate, ws.PlayerReadyUpdatePayload{
		RoomID:       roomID,
		Player1Ready: states[0],
		Player2Ready: states[1],
	}))

	if both {
		go s.runCountdown(room)
	}
	return nil
}

// SubmitAnswer records one player's answer for the current question.
// Duplicate and stale submissions are silently ignored.
func (s *Service) SubmitAnswer(connID uuid.UUID, payload ws.SubmitAnswerPayload) error {
	room, ok := s.room(payload.RoomID)
	if !ok {
		return s.sendError(connID, httperrors.ErrCodeRoomNotFound, "room not found")
	}

	result, err := room.Submit(connID, payload.QuestionIndex, payload.Answer, payload.TimeRemaining)
	switch err {
	case nil:
	case ErrDuplicateAnswer, ErrStaleAnswer:
		return nil
	case ErrNotParticipant:
		return s.sendError(connID, httperrors.ErrCodeSubmitFailed, err.Error())
	default:
		return s.sendError(connID, httperrors.ErrCodeSubmitFailed, err.Error())
	}

	s.broadcastAnswer(room, result)

	if result.BothAnswered {
		s.scheduleAdvance(room, result.QuestionIndex)
	}
	return nil
}

// Disconnect reflects a dropped connection everywhere: queue, tickets,
// identity table, and any room the player was in (forfeit + immediate
// eviction).
func (s *Service) Disconnect(connID uuid.UUID) {
	s.queue.Leave(connID)
	metrics.QueueDepth.Set(float64(s.queue.Len()))
	s.tickets.DropByHost(connID)

	s.mu.Lock()
	delete(s.identities, connID)
	roomID, inRoom := s.roomByConn[connID]
	var room *Room
	if inRoom {
		room = s.rooms[roomID]
	}
	s.mu.Unlock()

	if room == nil {
		return
	}

	outcome, forfeited := room.Forfeit(connID)
	if !forfeited {
		return
	}

	s.cancelDeadline(roomID)
	winner := outcome.Players[outcome.WinnerIndex]
	_ = s.notifier.Broadcast(roomID, ws.NewMessage(ws.TypeOpponentDisconnected, ws.OpponentDisconnectedPayload{
		RoomID: roomID,
		Winner: winner.DisplayName,
	}))
	s.finalize(room, outcome)

	// A dead connection on one side means nobody needs the grace window.
	s.evictRoom(roomID)
}

// RoomByID exposes a room for tests and diagnostics.
func (s *Service) RoomByID(roomID string) (*Room, bool) {
	return s.room(roomID)
}

func (s *Service) createRoom(ctx context.Context, conn1, conn2 uuid.UUID, ranked bool) error {
	id1, ok1 := s.identity(conn1)
	id2, ok2 := s.identity(conn2)
	if !ok1 || !ok2 {
		err := s.sendError(conn1, httperrors.ErrCodeRoomCreationFailed, "opponent no longer available")
		_ = s.sendError(conn2, httperrors.ErrCodeRoomCreationFailed, "opponent no longer available")
		return err
	}

	questions, err := s.questions.Pick(ctx, s.cfg.QuestionCount)
	if err != nil {
		s.logger.Error().Err(err).Msg("question selection failed")
		_ = s.sendError(conn1, httperrors.ErrCodeRoomCreationFailed, "could not start battle")
		return s.sendError(conn2, httperrors.ErrCodeRoomCreationFailed, "could not start battle")
	}

	roomID := s.newRoomID()
	room := NewRoom(roomID,
		Player{ConnID: conn1, Identity: id1},
		Player{ConnID: conn2, Identity: id2},
		questions, ranked, s.cfg.PerQuestionSeconds)

	s.mu.Lock()
	s.rooms[roomID] = room
	s.roomByConn[conn1] = roomID
	s.roomByConn[conn2] = roomID
	s.mu.Unlock()
	metrics.BattlesActive.Inc()

	s.notifier.JoinRoom(roomID, conn1)
	s.notifier.JoinRoom(roomID, conn2)

	public := make([]ws.QuestionPayload, len(questions))
	for i, q := range questions {
		public[i] = ws.QuestionPayload{ID: q.ID, Prompt: q.Prompt, Options: q.Options, Subject: q.Subject}
	}

	seats := [2]uuid.UUID{conn1, conn2}
	idents := [2]Identity{id1, id2}
	for i, conn := range seats {
		_ = s.notifier.Send(conn, ws.NewMessage(ws.TypeMatchFound, ws.MatchFoundPayload{
			RoomID:        roomID,
			Ranked:        ranked,
			PlayerIndex:   i,
			Questions:     public,
			QuestionCount: len(public),
		}))
		opponent := idents[1-i]
		_ = s.notifier.Send(conn, ws.NewMessage(ws.TypeOpponentInfo, ws.OpponentInfoPayload{
			DisplayName: opponent.DisplayName,
			Level:       opponent.Level,
		}))
	}

	s.logger.Info().
		Str("room_id", roomID).
		Bool("ranked", ranked).
		Str("player1", id1.DisplayName).
		Str("player2", id2.DisplayName).
		Msg("battle room created")
	return nil
}

func (s *Service) runCountdown(room *Room) {
	roomID := room.ID()
	for count := s.cfg.CountdownSeconds; count >= 0; count-- {
		_ = s.notifier.Broadcast(roomID, ws.NewMessage(ws.TypeCountdown, ws.CountdownPayload{
			RoomID: roomID,
			Count:  count,
		}))
		time.Sleep(s.cfg.CountdownTick)
	}

	if !room.Activate(s.now()) {
		return
	}
	_ = s.notifier.Broadcast(roomID, ws.NewMessage(ws.TypeBattleStart, ws.BattleStartPayload{
		RoomID:          roomID,
		QuestionIndex:   0,
		TimePerQuestion: s.cfg.PerQuestionSeconds,
	}))
	s.armDeadline(room, 0)
}

// armDeadline starts the server-side answer timer for a question index. When
// it fires, silent players get a synthesized no-answer so the room cannot
// hang on an unresponsive player.
func (s *Service) armDeadline(room *Room, index int) {
	roomID := room.ID()
	wait := time.Duration(s.cfg.PerQuestionSeconds)*time.Second + s.cfg.AnswerGrace

	s.mu.Lock()
	if old, ok := s.deadlines[roomID]; ok {
		old.Stop()
	}
	s.deadlines[roomID] = time.AfterFunc(wait, func() { s.onDeadline(room, index) })
	s.mu.Unlock()
}

func (s *Service) cancelDeadline(roomID string) {
	s.mu.Lock()
	if timer, ok := s.deadlines[roomID]; ok {
		timer.Stop()
		delete(s.deadlines, roomID)
	}
	s.mu.Unlock()
}

func (s *Service) onDeadline(room *Room, index int) {
	forced, complete := room.ForceNoAnswers(index)
	if len(forced) == 0 {
		return
	}

	s.logger.Info().Str("room_id", room.ID()).Int("question_index", index).Ints("seats", forced).Msg("forced no-answer for silent players")

	correct := room.Questions()[index].Correct
	scores := room.Scores()
	for _, seat := range forced {
		_ = s.notifier.Broadcast(room.ID(), ws.NewMessage(ws.TypeAnswerSubmitted, ws.AnswerSubmittedPayload{
			RoomID:        room.ID(),
			PlayerIndex:   seat,
			QuestionIndex: index,
			IsCorrect:     false,
			CorrectAnswer: correct,
			Scores:        []ws.ScoreState{{Score: scores[0].Score, Answered: scores[0].Answered}, {Score: scores[1].Score, Answered: scores[1].Answered}},
		}))
	}

	if complete {
		s.scheduleAdvance(room, index)
	}
}

func (s *Service) broadcastAnswer(room *Room, result SubmitResult) {
	_ = s.notifier.Broadcast(room.ID(), ws.NewMessage(ws.TypeAnswerSubmitted, ws.AnswerSubmittedPayload{
		RoomID:        room.ID(),
		PlayerIndex:   result.PlayerIndex,
		QuestionIndex: result.QuestionIndex,
		IsCorrect:     result.IsCorrect,
		CorrectAnswer: result.CorrectOption,
		Explanation:   result.Explanation,
		Scores: []ws.ScoreState{
			{Score: result.Scores[0].Score, Answered: result.Scores[0].Answered},
			{Score: result.Scores[1].Score, Answered: result.Scores[1].Answered},
		},
	}))
}

func (s *Service) scheduleAdvance(room *Room, index int) {
	s.cancelDeadline(room.ID())
	time.AfterFunc(s.cfg.RevealDelay, func() { s.advance(room, index) })
}

func (s *Service) advance(room *Room, index int) {
	next, outcome, ok := room.AdvanceFrom(index)
	if !ok {
		return
	}

	if outcome != nil {
		s.finishRoom(room, *outcome)
		return
	}

	_ = s.notifier.Broadcast(room.ID(), ws.NewMessage(ws.TypeNextQuestion, ws.NextQuestionPayload{
		RoomID:          room.ID(),
		QuestionIndex:   next,
		TimePerQuestion: s.cfg.PerQuestionSeconds,
	}))
	s.armDeadline(room, next)
}

func (s *Service) finishRoom(room *Room, outcome Outcome) {
	roomID := room.ID()
	s.cancelDeadline(roomID)
	s.finalize(room, outcome)

	// Retain the room briefly so both clients can fetch the final result.
	time.AfterFunc(s.cfg.FinishedRoomGrace, func() { s.evictRoom(roomID) })
}

// finalize broadcasts the result and credits XP.
func (s *Service) finalize(room *Room, outcome Outcome) {
	roomID := room.ID()

	var winner *ws.WinnerResult
	if outcome.WinnerIndex >= 0 {
		w := outcome.Players[outcome.WinnerIndex]
		winner = &ws.WinnerResult{DisplayName: w.DisplayName, Score: w.Score}
	}

	_ = s.notifier.Broadcast(roomID, ws.NewMessage(ws.TypeBattleEnd, ws.BattleEndPayload{
		RoomID:  roomID,
		Winner:  winner,
		IsDraw:  outcome.IsDraw,
		Forfeit: outcome.Forfeit,
		FinalScores: []ws.FinalScore{
			{DisplayName: outcome.Players[0].DisplayName, Score: outcome.Players[0].Score},
			{DisplayName: outcome.Players[1].DisplayName, Score: outcome.Players[1].Score},
		},
		XPReward: outcome.XPReward,
	}))

	switch {
	case outcome.IsDraw:
		metrics.BattlesFinished.WithLabelValues("draw").Inc()
	case outcome.Forfeit:
		metrics.BattlesFinished.WithLabelValues("forfeit").Inc()
	default:
		metrics.BattlesFinished.WithLabelValues("decided").Inc()
	}

	if s.xp == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if outcome.IsDraw {
		for _, p := range outcome.Players {
			if err := s.xp.AwardXP(ctx, p.UserID, p.DisplayName, XPDraw); err != nil {
				s.logger.Warn().Err(err).Str("user_id", p.UserID).Msg("xp award failed")
			}
		}
		return
	}
	w := outcome.Players[outcome.WinnerIndex]
	if err := s.xp.AwardXP(ctx, w.UserID, w.DisplayName, XPWinner); err != nil {
		s.logger.Warn().Err(err).Str("user_id", w.UserID).Msg("xp award failed")
	}
}

func (s *Service) evictRoom(roomID string) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.rooms, roomID)
	for _, p := range [2]uuid.UUID{room.players[0].ConnID, room.players[1].ConnID} {
		if s.roomByConn[p] == roomID {
			delete(s.roomByConn, p)
		}
	}
	if timer, held := s.deadlines[roomID]; held {
		timer.Stop()
		delete(s.deadlines, roomID)
	}
	s.mu.Unlock()

	s.notifier.DropRoom(roomID)
	metrics.BattlesActive.Dec()
	s.logger.Debug().Str("room_id", roomID).Msg("room evicted")
}

func (s *Service) identity(connID uuid.UUID) (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[connID]
	return ident, ok
}

func (s *Service) room(roomID string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

func (s *Service) sendError(connID uuid.UUID, code, message string) error {
	err := s.notifier.Send(connID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{
		Code:    code,
		Message: message,
	}))
	if err != nil {
		return fmt.Errorf("send error message: %w", err)
	}
	return nil
}
