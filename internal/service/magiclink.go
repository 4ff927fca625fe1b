package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gnosis-auth/backend/internal/client"
	"github.com/gnosis-auth/backend/internal/db"
	"github.com/gnosis-auth/backend/internal/model"
	"github.com/gnosis-auth/backend/internal/token"
)

// mailTokenLength is the entropy (bytes) of a magic-link secret.
const mailTokenLength = 32

type magicLinkUserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, uid, email, name string) (*model.User, error)
	SetMailToken(ctx context.Context, uid, tokenHash string) error
	ClearMailToken(ctx context.Context, uid string) error
}

// MagicLinkService drives email-based login: a one-time secret is
// issued per user (at most one live secret at a time) and exchanged for
// a session JWT on presentation.
type MagicLinkService struct {
	users   magicLinkUserStore
	jwt     *JWTService
	mailer  client.Mailer
	console bool
	domain  string
}

func NewMagicLinkService(users magicLinkUserStore, jwtSvc *JWTService, mailer client.Mailer, consoleDelivery bool, domain string) *MagicLinkService {
	return &MagicLinkService{
		users:   users,
		jwt:     jwtSvc,
		mailer:  mailer,
		console: consoleDelivery,
		domain:  domain,
	}
}

// Request resolves (or creates) the user for the given email and issues
// a fresh magic-link secret, invalidating any prior unconsumed one.
// Only the bcrypt hash of the secret is persisted.
func (s *MagicLinkService) Request(ctx context.Context, email, returnURL string) (*model.LoginChallengeResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !db.IsNoRows(err) {
			return nil, err
		}
		name := email[:strings.Index(email, "@")]
		user, err = s.users.CreateUser(ctx, uuid.NewString(), email, name)
		if err != nil {
			return nil, err
		}
		log.Printf("[MagicLink] Created new user %s for %s", user.UID, email)
	}

	if !user.Active {
		return nil, ErrUnauthorized
	}

	secret, err := token.Generate(mailTokenLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetMailToken(ctx, user.UID, string(hash)); err != nil {
		return nil, err
	}

	if s.console {
		log.Printf("[MagicLink] Login token for %s: %s", email, secret)
		return &model.LoginChallengeResponse{
			Status: "token_issued",
			Email:  email,
			Token:  secret,
		}, nil
	}

	link := client.LoginLink(s.domain, email, secret, returnURL)
	if err := s.mailer.SendLoginLink(ctx, email, link, secret); err != nil {
		log.Printf("[MagicLink] Failed to send login email to %s: %v", email, err)
		return nil, ErrUpstream
	}
	return &model.LoginChallengeResponse{
		Status: "email_sent",
		Email:  email,
	}, nil
}

// Verify checks a submitted secret against the outstanding one. On
// match the secret is cleared (single use) and a session JWT minted.
// On mismatch the secret stays valid; rate limiting is external.
func (s *MagicLinkService) Verify(ctx context.Context, email, secret string) (string, int64, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || secret == "" {
		return "", 0, ErrInvalidInput
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return "", 0, ErrUnauthorized
		}
		return "", 0, err
	}

	if !user.Active || user.MailTokenHash == "" {
		return "", 0, ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.MailTokenHash), []byte(secret)) != nil {
		log.Printf("[MagicLink] Invalid token submitted for %s", email)
		return "", 0, ErrUnauthorized
	}

	if err := s.users.ClearMailToken(ctx, user.UID); err != nil {
		return "", 0, err
	}

	return s.jwt.Issue(IssueParams{
		Email:   user.Email,
		UserUID: user.UID,
		Name:    user.Name,
	})
}
