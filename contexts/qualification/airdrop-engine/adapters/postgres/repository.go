package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quinty/contexts/qualification/airdrop-engine/domain/entities"
	domainerrors "quinty/contexts/qualification/airdrop-engine/domain/errors"
	"quinty/contexts/qualification/airdrop-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveAirdrop(ctx context.Context, airdrop entities.Airdrop) error {
	row := airdropModelFromEntity(airdrop)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "airdrop_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"approved_count": row.ApprovedCount,
			"resolved":       row.Resolved,
			"cancelled":      row.Cancelled,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrInvalidInput
		}
		return r.logError("airdrop_repo_save_airdrop_failed", create.Error,
			"airdrop_id", airdrop.AirdropID,
			"creator", strings.TrimSpace(airdrop.Creator),
		)
	}
	return nil
}

func (r *Repository) GetAirdrop(ctx context.Context, airdropID uint64) (entities.Airdrop, error) {
	var row airdropModel
	err := r.db.WithContext(ctx).
		Where("airdrop_id = ?", airdropID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Airdrop{}, domainerrors.ErrAirdropNotFound
		}
		return entities.Airdrop{}, r.logError("airdrop_repo_get_airdrop_failed", err, "airdrop_id", airdropID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListAirdrops(ctx context.Context) ([]entities.Airdrop, error) {
	var rows []airdropModel
	if err := r.db.WithContext(ctx).
		Order("airdrop_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("airdrop_repo_list_airdrops_failed", err)
	}
	items := make([]entities.Airdrop, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountAirdrops(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&airdropModel{}).
		Count(&count).Error; err != nil {
		return 0, r.logError("airdrop_repo_count_airdrops_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) SaveEntry(ctx context.Context, entry entities.Entry) error {
	row := entryModelFromEntity(entry)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "entry_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":   row.Status,
			"feedback": row.Feedback,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrDuplicateEntry
		}
		return r.logError("airdrop_repo_save_entry_failed", create.Error,
			"entry_id", entry.EntryID,
			"airdrop_id", entry.AirdropID,
		)
	}
	return nil
}

func (r *Repository) GetEntry(ctx context.Context, entryID uint64) (entities.Entry, error) {
	var row entryModel
	err := r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Entry{}, domainerrors.ErrEntryNotFound
		}
		return entities.Entry{}, r.logError("airdrop_repo_get_entry_failed", err, "entry_id", entryID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetEntryBySolver(ctx context.Context, airdropID uint64, solver string) (entities.Entry, bool, error) {
	var row entryModel
	err := r.db.WithContext(ctx).
		Where("airdrop_id = ?", airdropID).
		Where("solver = ?", strings.TrimSpace(solver)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Entry{}, false, nil
		}
		return entities.Entry{}, false, r.logError("airdrop_repo_get_entry_by_solver_failed", err,
			"airdrop_id", airdropID,
			"solver", strings.TrimSpace(solver),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListEntriesByAirdrop(ctx context.Context, airdropID uint64) ([]entities.Entry, error) {
	var rows []entryModel
	if err := r.db.WithContext(ctx).
		Where("airdrop_id = ?", airdropID).
		Order("entry_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("airdrop_repo_list_entries_failed", err, "airdrop_id", airdropID)
	}
	items := make([]entities.Entry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AddVerifier(ctx context.Context, address string) error {
	row := verifierModel{
		Address:   strings.TrimSpace(address),
		CreatedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("airdrop_repo_add_verifier_failed", create.Error, "address", row.Address)
	}
	return nil
}

func (r *Repository) RemoveVerifier(ctx context.Context, address string) error {
	if err := r.db.WithContext(ctx).
		Where("address = ?", strings.TrimSpace(address)).
		Delete(&verifierModel{}).Error; err != nil {
		return r.logError("airdrop_repo_remove_verifier_failed", err, "address", strings.TrimSpace(address))
	}
	return nil
}

func (r *Repository) IsVerifier(ctx context.Context, address string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&verifierModel{}).
		Where("address = ?", strings.TrimSpace(address)).
		Count(&count).Error; err != nil {
		return false, r.logError("airdrop_repo_is_verifier_failed", err, "address", strings.TrimSpace(address))
	}
	return count > 0, nil
}

func (r *Repository) ListVerifiers(ctx context.Context) ([]string, error) {
	var rows []verifierModel
	if err := r.db.WithContext(ctx).
		Order("address ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("airdrop_repo_list_verifiers_failed", err)
	}
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Address)
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("airdrop_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("airdrop_repo_append_outbox_insert_failed", create.Error, "outbox_id", row.OutboxID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("airdrop_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("airdrop_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "qualification/airdrop-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("airdrop repository operation failed", fields...)
	return err
}

type airdropModel struct {
	AirdropID       uint64    `gorm:"column:airdrop_id;primaryKey"`
	Creator         string    `gorm:"column:creator"`
	Title           string    `gorm:"column:title"`
	DescriptionRef  string    `gorm:"column:description_ref"`
	PerQualifier    uint64    `gorm:"column:per_qualifier"`
	MaxQualifiers   uint64    `gorm:"column:max_qualifiers"`
	Deadline        time.Time `gorm:"column:deadline"`
	ApprovedCount   uint64    `gorm:"column:approved_count"`
	Resolved        bool      `gorm:"column:resolved"`
	Cancelled       bool      `gorm:"column:cancelled"`
	RequirementsRef string    `gorm:"column:requirements_ref"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (airdropModel) TableName() string {
	return "airdrops"
}

func airdropModelFromEntity(airdrop entities.Airdrop) airdropModel {
	return airdropModel{
		AirdropID:       airdrop.AirdropID,
		Creator:         strings.TrimSpace(airdrop.Creator),
		Title:           strings.TrimSpace(airdrop.Title),
		DescriptionRef:  strings.TrimSpace(airdrop.DescriptionRef),
		PerQualifier:    airdrop.PerQualifier,
		MaxQualifiers:   airdrop.MaxQualifiers,
		Deadline:        airdrop.Deadline.UTC(),
		ApprovedCount:   airdrop.ApprovedCount,
		Resolved:        airdrop.Resolved,
		Cancelled:       airdrop.Cancelled,
		RequirementsRef: strings.TrimSpace(airdrop.RequirementsRef),
		CreatedAt:       airdrop.CreatedAt.UTC(),
	}
}

func (m airdropModel) toEntity() entities.Airdrop {
	return entities.Airdrop{
		AirdropID:       m.AirdropID,
		Creator:         m.Creator,
		Title:           m.Title,
		DescriptionRef:  m.DescriptionRef,
		PerQualifier:    m.PerQualifier,
		MaxQualifiers:   m.MaxQualifiers,
		Deadline:        m.Deadline.UTC(),
		ApprovedCount:   m.ApprovedCount,
		Resolved:        m.Resolved,
		Cancelled:       m.Cancelled,
		RequirementsRef: m.RequirementsRef,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

type entryModel struct {
	EntryID   uint64    `gorm:"column:entry_id;primaryKey"`
	AirdropID uint64    `gorm:"column:airdrop_id"`
	Solver    string    `gorm:"column:solver"`
	ProofRef  string    `gorm:"column:proof_ref"`
	Status    string    `gorm:"column:status"`
	Feedback  string    `gorm:"column:feedback"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (entryModel) TableName() string {
	return "airdrop_entries"
}

func entryModelFromEntity(entry entities.Entry) entryModel {
	return entryModel{
		EntryID:   entry.EntryID,
		AirdropID: entry.AirdropID,
		Solver:    strings.TrimSpace(entry.Solver),
		ProofRef:  strings.TrimSpace(entry.ProofRef),
		Status:    string(entry.Status),
		Feedback:  strings.TrimSpace(entry.Feedback),
		CreatedAt: entry.CreatedAt.UTC(),
	}
}

func (m entryModel) toEntity() entities.Entry {
	return entities.Entry{
		EntryID:   m.EntryID,
		AirdropID: m.AirdropID,
		Solver:    m.Solver,
		ProofRef:  m.ProofRef,
		Status:    entities.EntryStatus(m.Status),
		Feedback:  m.Feedback,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type verifierModel struct {
	Address   string    `gorm:"column:address;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (verifierModel) TableName() string {
	return "airdrop_verifiers"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "airdrop_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.AirdropRepository = (*Repository)(nil)
var _ ports.VerifierSet = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
