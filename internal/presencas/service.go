package presencas

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Service handles attendance business logic.
type Service struct {
	repo   *Repository
	auth   *DeviceAuthenticator
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo *Repository, auth *DeviceAuthenticator, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, auth: auth, audit: audit, logger: logger}
}

// Registar stores a manual attendance entry under the principal's scope.
func (s *Service) Registar(ctx context.Context, principal shared.Principal, in CreateInput) (Presenca, error) {
	if err := in.Validate(); err != nil {
		return Presenca{}, err
	}
	scope, err := principal.Scope()
	if err != nil {
		return Presenca{}, err
	}
	presenca, err := s.repo.Insert(ctx, Presenca{
		InstitutionID: scope.InstitutionID(),
		FuncionarioID: in.FuncionarioID,
		Tipo:          in.Tipo,
		Origem:        OrigemManual,
		RegistadoEm:   in.RegistadoEm.UTC(),
	})
	if err != nil {
		return Presenca{}, err
	}
	s.recordAudit(ctx, principal.UserID, principal.InstitutionID, "presencas.registar", presenca.ID)
	return presenca, nil
}

// RegistarDispositivo stores a punch posted by an authenticated terminal.
// The institution comes from the device, never from the payload.
func (s *Service) RegistarDispositivo(ctx context.Context, device Device, punch DevicePunch) (Presenca, error) {
	if _, err := ParseTipo(string(punch.Tipo)); err != nil {
		return Presenca{}, err
	}
	if punch.FuncionarioID == uuid.Nil {
		return Presenca{}, errors.New("presencas: funcionario required")
	}
	registadoEm := punch.RegistadoEm
	if registadoEm.IsZero() {
		registadoEm = time.Now()
	}
	deviceID := device.ID
	presenca, err := s.repo.Insert(ctx, Presenca{
		InstitutionID: device.InstitutionID,
		FuncionarioID: punch.FuncionarioID,
		Tipo:          punch.Tipo,
		Origem:        OrigemDispositivo,
		DeviceID:      &deviceID,
		RegistadoEm:   registadoEm.UTC(),
	})
	if err != nil {
		return Presenca{}, err
	}
	if err := s.repo.TouchDevice(ctx, device.ID); err != nil && s.logger != nil {
		s.logger.Warn("touch device", slog.Any("error", err))
	}
	s.recordAudit(ctx, device.ID, &device.InstitutionID, "presencas.dispositivo", presenca.ID)
	return presenca, nil
}

// List returns punches visible to the principal.
func (s *Service) List(ctx context.Context, principal shared.Principal, funcionarioID *uuid.UUID, limit, offset int) ([]Presenca, error) {
	scope, err := principal.Scope()
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, scope, funcionarioID, limit, offset)
}

// RegisterDevice creates a terminal and returns the one-time clear token.
func (s *Service) RegisterDevice(ctx context.Context, principal shared.Principal, name string) (Device, string, error) {
	scope, err := principal.Scope()
	if err != nil {
		return Device{}, "", err
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Device{}, "", err
	}
	token := hex.EncodeToString(buf)
	device := Device{
		ID:            uuid.New(),
		InstitutionID: scope.InstitutionID(),
		Name:          name,
		TokenHash:     HashToken(token),
		Active:        true,
	}
	if err := s.repo.InsertDevice(ctx, device); err != nil {
		return Device{}, "", err
	}
	s.recordAudit(ctx, principal.UserID, principal.InstitutionID, "presencas.device.register", device.ID)
	return device, token, nil
}

// RevokeDevice deactivates a terminal and drops its cache entry.
func (s *Service) RevokeDevice(ctx context.Context, principal shared.Principal, id uuid.UUID) error {
	scope, err := principal.Scope()
	if err != nil {
		return err
	}
	devices, err := s.repo.ListDevices(ctx, scope)
	if err != nil {
		return err
	}
	var hash string
	for _, d := range devices {
		if d.ID == id {
			hash = d.TokenHash
			break
		}
	}
	if err := s.repo.DeactivateDevice(ctx, scope, id); err != nil {
		return err
	}
	if hash != "" && s.auth != nil {
		s.auth.Invalidate(ctx, hash)
	}
	s.recordAudit(ctx, principal.UserID, principal.InstitutionID, "presencas.device.revoke", id)
	return nil
}

// ListDevices returns terminals visible to the principal.
func (s *Service) ListDevices(ctx context.Context, principal shared.Principal) ([]Device, error) {
	scope, err := principal.Scope()
	if err != nil {
		return nil, err
	}
	return s.repo.ListDevices(ctx, scope)
}

func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, institutionID *uuid.UUID, action string, entityID uuid.UUID) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:       actorID,
		InstitutionID: institutionID,
		Action:        action,
		Entity:        "presencas",
		EntityID:      entityID.String(),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit presenca", slog.Any("error", err))
	}
}
