package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Account validation and authentication errors.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPassword    = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// minPasswordLength is the registration password floor.
const minPasswordLength = 8

// Account is one registered user profile. Password holds the SHA-256 hex
// digest, never the plaintext.
type Account struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FullName  string  `json:"full_name"`
	CreatedAt string  `json:"created_at"`
	LastLogin *string `json:"last_login"`
}

// AccountStore persists user accounts in a JSON object keyed by username.
type AccountStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewAccountStore creates an AccountStore backed by the given file.
func NewAccountStore(path string) *AccountStore {
	return &AccountStore{path: path, now: time.Now}
}

// hashPassword returns the SHA-256 hex digest of a password. Unsalted, for
// compatibility with existing account files.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// validEmail requires an "@" with a "." somewhere after it.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(email[at:], ".")
}

// Register creates a new account.
//
// Arguments:
//   - username: Desired username, must be unused.
//   - email: Must contain "@" followed by a later ".".
//   - password: Minimum 8 characters, stored hashed.
//   - fullName: Display name for the profile.
//
// Returns:
//   - error: ErrDuplicateUsername, ErrInvalidEmail, ErrInvalidPassword, or a
//     write error.
func (s *AccountStore) Register(username, email, password, fullName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A taken username is reported before any field validation.
	accounts := s.load()
	if _, exists := accounts[username]; exists {
		return ErrDuplicateUsername
	}
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return ErrInvalidPassword
	}

	accounts[username] = Account{
		Email:     email,
		Password:  hashPassword(password),
		FullName:  fullName,
		CreatedAt: s.now().Format(timeFormat),
	}
	return s.save(accounts)
}

// Login authenticates a user and updates their last-login timestamp.
//
// Returns:
//   - Account: The profile after the login stamp.
//   - error: ErrInvalidCredentials, or a write error.
func (s *AccountStore) Login(username, password string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.load()
	account, exists := accounts[username]
	if !exists || account.Password != hashPassword(password) {
		return Account{}, ErrInvalidCredentials
	}

	stamp := s.now().Format(timeFormat)
	account.LastLogin = &stamp
	accounts[username] = account
	if err := s.save(accounts); err != nil {
		return Account{}, err
	}
	return account, nil
}

// Get returns a user's profile.
func (s *AccountStore) Get(username string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.load()[username]
	return account, exists
}

// load reads the accounts file. Missing or corrupt files yield an empty map.
func (s *AccountStore) load() map[string]Account {
	accounts := map[string]Account{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return accounts
	}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return map[string]Account{}
	}
	return accounts
}

// save writes the accounts file atomically.
func (s *AccountStore) save(accounts map[string]Account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode accounts")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp accounts file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write accounts")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close temp accounts file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to replace accounts file")
	}
	return nil
}
