package account

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrNotFound           = core.NewError(core.KindNotFound, "account not found")
	ErrDuplicateHandle    = core.NewError(core.KindConflict, "an account with this handle already exists")
	ErrInvalidCredentials = core.NewError(core.KindUnauthenticated, "invalid credentials")
	ErrMissingToken       = core.NewError(core.KindUnauthenticated, "missing or malformed token")
	ErrInvalidToken       = core.NewError(core.KindUnauthenticated, "invalid or expired token")

	// dummyHash is compared against when no account matches, so unknown handles cost as much as bad secrets
	dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z7ZDUCN6iTmSm3WsJZvp.N1a")
)

type (
	Repository interface {
		// CreateAccount fails with ErrDuplicateHandle if (Role, Handle) is taken.
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccount(ctx context.Context, filter GetFilter) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
	}

	Service struct {
		conf     *core.Config
		repo     Repository
		tokens   *Tokenizer
		mailSvc  core.EmailService
		validate *validator.Validate
	}
)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(conf, "conf"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{
		conf:     conf,
		repo:     repo,
		tokens:   NewTokenizer(conf),
		mailSvc:  mailSvc,
		validate: validate,
	}
}

// Create validates and stores a new Account. Only the secret's salted hash is kept.
func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	acc, err := svc.Prepare(na)
	if err != nil {
		return Account{}, err
	}
	return svc.Insert(ctx, acc)
}

// Prepare validates na and hashes its secret without touching the store.
// Hashing is slow: callers holding a transaction should Prepare before opening it.
func (svc *Service) Prepare(na NewAccount) (Account, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Account{}, err
	}

	now := NowFunc().UTC()
	acc := Account{
		ID:        uuid.NewString(),
		Role:      na.Role,
		Handle:    na.Handle,
		Name:      na.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	return acc, nil
}

// Insert stores an Account built by Prepare. It has no side effects beyond the store,
// so it can run inside a transaction.
func (svc *Service) Insert(ctx context.Context, acc Account) (Account, error) {
	acc, err := svc.repo.CreateAccount(ctx, acc)
	if err != nil {
		if errors.Is(err, ErrDuplicateHandle) {
			return Account{}, err
		}
		return Account{}, errors.Wrap(err, "creating account")
	}
	return acc, nil
}

// Register creates the Account and welcomes it.
func (svc *Service) Register(ctx context.Context, na NewAccount) (Account, error) {
	acc, err := svc.Create(ctx, na)
	if err != nil {
		return Account{}, err
	}
	svc.SendWelcome(acc)
	return acc, nil
}

// SendWelcome emails new teacher accounts; student accounts have no email on file.
func (svc *Service) SendWelcome(acc Account) {
	addr, ok := acc.Email()
	if !ok {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{addr},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: acc,
	})
}

// Authenticate verifies the secret of the (role, handle) account and issues a session token.
// Unknown handles and wrong secrets are indistinguishable to the caller.
func (svc *Service) Authenticate(ctx context.Context, role Role, handle, secret string) (string, Account, error) {
	if !role.Valid() {
		return "", Account{}, ErrInvalidCredentials
	}

	acc, err := svc.repo.GetAccount(ctx, GetFilter{Role: role, Handle: CleanHandle(role, handle)})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = (&Account{PasswordHash: dummyHash}).CheckPassword(secret)
			return "", Account{}, ErrInvalidCredentials
		}
		return "", Account{}, errors.Wrap(err, "finding account")
	}
	if err = acc.CheckPassword(secret); err != nil {
		return "", Account{}, ErrInvalidCredentials
	}

	acc.LastLogin = null.TimeFrom(NowFunc().UTC())
	if acc, err = svc.repo.UpdateAccount(ctx, acc); err != nil {
		return "", Account{}, errors.Wrap(err, "setting last login")
	}

	token, err := svc.tokens.Issue(acc)
	if err != nil {
		return "", Account{}, errors.Wrap(err, "issuing token")
	}
	return token, acc, nil
}

// Validate resolves a session token to its Account.
// It fails with an Unauthenticated error if the token is malformed, expired, or its account is gone.
func (svc *Service) Validate(ctx context.Context, token string) (Account, error) {
	claims, err := svc.tokens.Parse(token)
	if err != nil {
		return Account{}, err
	}

	acc, err := svc.repo.GetAccount(ctx, GetFilter{ID: claims.Subject})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrInvalidToken
		}
		return Account{}, errors.Wrap(err, "finding account")
	}
	if acc.Role != claims.Role {
		return Account{}, ErrInvalidToken
	}
	return acc, nil
}

func (svc *Service) GetByHandle(ctx context.Context, role Role, handle string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{Role: role, Handle: CleanHandle(role, handle)})
}

// ChangePassword rotates the credential after checking the current one.
// Tokens issued before the rotation stay valid until they expire.
func (svc *Service) ChangePassword(ctx context.Context, acc Account, cp ChangePassword) error {
	if err := cp.Validate(svc.validate, acc); err != nil {
		return err
	}
	if err := acc.CheckPassword(cp.CurrentPassword); err != nil {
		return ErrInvalidCredentials
	}
	return svc.setPassword(ctx, acc, cp.Password)
}

// SetPassword resets the credential without the current one (operators only).
func (svc *Service) SetPassword(ctx context.Context, acc Account, sp SetPassword) error {
	if err := sp.Validate(svc.validate, acc); err != nil {
		return err
	}
	return svc.setPassword(ctx, acc, sp.Password)
}

func (svc *Service) setPassword(ctx context.Context, acc Account, pwd string) error {
	if err := acc.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	acc.UpdatedAt = NowFunc().UTC()
	if _, err := svc.repo.UpdateAccount(ctx, acc); err != nil {
		return errors.Wrap(err, "updating account")
	}

	if addr, ok := acc.Email(); ok {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{addr},
			Subject:      fmt.Sprintf("Your %s password was changed", svc.conf.AppName),
			TemplateName: "password_changed",
			TemplateData: acc,
		})
	}
	return nil
}
