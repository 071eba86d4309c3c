package actors

import (
	"log"
	"strings"
	"time"

	stdctx "context"

	"hazard-watch/internal/api"
	"hazard-watch/internal/ledger"
	"hazard-watch/internal/middleware"
	"hazard-watch/internal/models"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"golang.org/x/crypto/bcrypt"
)

// Message types for account operations
type (
	RegisterUserMsg struct {
		Email       string
		DisplayName string
		PhotoURL    string
		Password    string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetProfileMsg struct {
		Email string
	}
)

// AccountActor manages user profiles: registration, login and profile
// reads. Profiles live at users/{sanitizedEmail}; the vote ledger and
// points accountor resolve identities against the same documents.
type AccountActor struct {
	store   store.Store
	metrics *utils.MetricsCollector
}

func NewAccountActor(s store.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &AccountActor{
		store:   s,
		metrics: metrics,
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func (a *AccountActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("AccountActor started")
	case *RegisterUserMsg:
		a.handleRegister(context, msg)
	case *LoginMsg:
		log.Printf("AccountActor: Processing login request for email: %s", msg.Email)
		a.handleLogin(context, msg)
	case *GetProfileMsg:
		a.handleGetProfile(context, msg)
	}
}

func (a *AccountActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()

	if strings.TrimSpace(msg.Email) == "" || strings.TrimSpace(msg.DisplayName) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "email and display name are required", nil))
		return
	}
	if len(msg.Password) < 8 {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "password must be at least 8 characters", nil))
		return
	}

	ctx := stdctx.Background()
	userKey := ledger.SanitizeKey(msg.Email)
	path := store.Path(store.CollectionUsers, userKey)

	existing, err := a.store.Get(ctx, path)
	if err != nil {
		context.Respond(utils.NewStoreError("get user profile", err))
		return
	}
	if existing != nil {
		log.Printf("AccountActor: Email already registered: %s", msg.Email)
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
		return
	}

	hashedPassword, err := hashPassword(msg.Password)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Failed to hash password", err))
		return
	}

	user := &models.User{
		Email:          msg.Email,
		DisplayName:    msg.DisplayName,
		PhotoURL:       msg.PhotoURL,
		HashedPassword: hashedPassword,
		Scores:         make([]models.ScoreEvent, 0),
		CreatedAt:      time.Now(),
	}

	if err := a.store.Set(ctx, path, user.Doc()); err != nil {
		context.Respond(utils.NewStoreError("set user profile", err))
		return
	}

	log.Printf("AccountActor: Registered user %s", userKey)
	a.metrics.AddOperationLatency("register_user", time.Since(startTime))
	context.Respond(user)
}

func (a *AccountActor) handleLogin(context actor.Context, msg *LoginMsg) {
	ctx := stdctx.Background()
	userKey := ledger.SanitizeKey(msg.Email)

	doc, err := a.store.Get(ctx, store.Path(store.CollectionUsers, userKey))
	if err != nil || doc == nil {
		log.Printf("AccountActor: Login failed, no profile for %s", userKey)
		context.Respond(&api.LoginResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}
	user := models.UserFromDoc(doc)

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		log.Printf("AccountActor: Login failed, password mismatch for %s", userKey)
		context.Respond(&api.LoginResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}

	token, err := middleware.GenerateToken(msg.Email)
	if err != nil {
		log.Printf("AccountActor: Failed to generate token: %v", err)
		context.Respond(&api.LoginResponse{
			Success: false,
			Error:   "Authentication error",
		})
		return
	}

	log.Printf("AccountActor: Login successful for %s", userKey)
	context.Respond(&api.LoginResponse{
		Success: true,
		Token:   token,
		Email:   user.Email,
	})
}

func (a *AccountActor) handleGetProfile(context actor.Context, msg *GetProfileMsg) {
	userKey := ledger.SanitizeKey(msg.Email)
	doc, err := a.store.Get(stdctx.Background(), store.Path(store.CollectionUsers, userKey))
	if err != nil {
		context.Respond(utils.NewStoreError("get user profile", err))
		return
	}
	if doc == nil {
		context.Respond(utils.NewProfileMissingError(userKey))
		return
	}
	context.Respond(models.UserFromDoc(doc))
}
