package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quinty/contexts/escrow-core/bounty-engine/domain/entities"
	domainerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
	"quinty/contexts/escrow-core/bounty-engine/ports"

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

func (r *Repository) SaveBounty(ctx context.Context, bounty entities.Bounty) error {
	row, err := bountyModelFromEntity(bounty)
	if err != nil {
		return r.logError("bounty_repo_save_bounty_marshal_failed", err, "bounty_id", bounty.BountyID)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bounty_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":           row.Status,
			"winners":          row.Winners,
			"winning_sub_ids":  row.WinningSubIDs,
			"winner_shares_bp": row.WinnerSharesBP,
			"resolved_at":      row.ResolvedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrInvalidInput
		}
		return r.logError("bounty_repo_save_bounty_failed", create.Error,
			"bounty_id", bounty.BountyID,
			"creator", strings.TrimSpace(bounty.Creator),
		)
	}
	return nil
}

func (r *Repository) GetBounty(ctx context.Context, bountyID uint64) (entities.Bounty, error) {
	var row bountyModel
	err := r.db.WithContext(ctx).
		Where("bounty_id = ?", bountyID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Bounty{}, domainerrors.ErrBountyNotFound
		}
		return entities.Bounty{}, r.logError("bounty_repo_get_bounty_failed", err, "bounty_id", bountyID)
	}
	return row.toEntity()
}

func (r *Repository) ListBounties(ctx context.Context) ([]entities.Bounty, error) {
	var rows []bountyModel
	if err := r.db.WithContext(ctx).
		Order("bounty_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("bounty_repo_list_bounties_failed", err)
	}
	items := make([]entities.Bounty, 0, len(rows))
	for _, row := range rows {
		bounty, err := row.toEntity()
		if err != nil {
			return nil, r.logError("bounty_repo_list_bounties_decode_failed", err, "bounty_id", row.BountyID)
		}
		items = append(items, bounty)
	}
	return items, nil
}

func (r *Repository) CountBounties(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&bountyModel{}).
		Count(&count).Error; err != nil {
		return 0, r.logError("bounty_repo_count_bounties_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) SaveSubmission(ctx context.Context, submission entities.Submission) error {
	row, err := submissionModelFromEntity(submission)
	if err != nil {
		return r.logError("bounty_repo_save_submission_marshal_failed", err, "submission_id", submission.SubmissionID)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "submission_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"reveal_ref": row.RevealRef,
			"revealed":   row.Revealed,
			"replies":    row.Replies,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrInvalidInput
		}
		return r.logError("bounty_repo_save_submission_failed", create.Error,
			"submission_id", submission.SubmissionID,
			"bounty_id", submission.BountyID,
		)
	}
	return nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID uint64) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, r.logError("bounty_repo_get_submission_failed", err, "submission_id", submissionID)
	}
	return row.toEntity()
}

func (r *Repository) ListSubmissionsByBounty(ctx context.Context, bountyID uint64) ([]entities.Submission, error) {
	var rows []submissionModel
	if err := r.db.WithContext(ctx).
		Where("bounty_id = ?", bountyID).
		Order("submission_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("bounty_repo_list_submissions_failed", err, "bounty_id", bountyID)
	}
	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		submission, err := row.toEntity()
		if err != nil {
			return nil, r.logError("bounty_repo_list_submissions_decode_failed", err, "submission_id", row.SubmissionID)
		}
		items = append(items, submission)
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("bounty_repo_append_outbox_marshal_failed", err,
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
		return r.logError("bounty_repo_append_outbox_insert_failed", create.Error, "outbox_id", row.OutboxID)
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
		return nil, r.logError("bounty_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("bounty_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "escrow-core/bounty-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("bounty repository operation failed", fields...)
	return err
}

type bountyModel struct {
	BountyID       uint64     `gorm:"column:bounty_id;primaryKey"`
	Creator        string     `gorm:"column:creator"`
	ContentRef     string     `gorm:"column:content_ref"`
	Amount         uint64     `gorm:"column:amount"`
	Deadline       time.Time  `gorm:"column:deadline"`
	MultiWinner    bool       `gorm:"column:multi_winner"`
	WinnerSharesBP []byte     `gorm:"column:winner_shares_bp;type:jsonb"`
	SlashBP        uint64     `gorm:"column:slash_bp"`
	Status         string     `gorm:"column:status"`
	Winners        []byte     `gorm:"column:winners;type:jsonb"`
	WinningSubIDs  []byte     `gorm:"column:winning_sub_ids;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at"`
}

func (bountyModel) TableName() string {
	return "bounties"
}

func bountyModelFromEntity(bounty entities.Bounty) (bountyModel, error) {
	shares, err := json.Marshal(bounty.WinnerSharesBP)
	if err != nil {
		return bountyModel{}, err
	}
	winners, err := json.Marshal(bounty.Winners)
	if err != nil {
		return bountyModel{}, err
	}
	subIDs, err := json.Marshal(bounty.WinningSubIDs)
	if err != nil {
		return bountyModel{}, err
	}
	row := bountyModel{
		BountyID:       bounty.BountyID,
		Creator:        strings.TrimSpace(bounty.Creator),
		ContentRef:     strings.TrimSpace(bounty.ContentRef),
		Amount:         bounty.Amount,
		Deadline:       bounty.Deadline.UTC(),
		MultiWinner:    bounty.MultiWinner,
		WinnerSharesBP: shares,
		SlashBP:        bounty.SlashBP,
		Status:         string(bounty.Status),
		Winners:        winners,
		WinningSubIDs:  subIDs,
		CreatedAt:      bounty.CreatedAt.UTC(),
	}
	if !bounty.ResolvedAt.IsZero() {
		resolvedAt := bounty.ResolvedAt.UTC()
		row.ResolvedAt = &resolvedAt
	}
	return row, nil
}

func (m bountyModel) toEntity() (entities.Bounty, error) {
	bounty := entities.Bounty{
		BountyID:    m.BountyID,
		Creator:     m.Creator,
		ContentRef:  m.ContentRef,
		Amount:      m.Amount,
		Deadline:    m.Deadline.UTC(),
		MultiWinner: m.MultiWinner,
		SlashBP:     m.SlashBP,
		Status:      entities.BountyStatus(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
	}
	if m.ResolvedAt != nil {
		bounty.ResolvedAt = m.ResolvedAt.UTC()
	}
	if len(m.WinnerSharesBP) > 0 {
		if err := json.Unmarshal(m.WinnerSharesBP, &bounty.WinnerSharesBP); err != nil {
			return entities.Bounty{}, err
		}
	}
	if len(m.Winners) > 0 {
		if err := json.Unmarshal(m.Winners, &bounty.Winners); err != nil {
			return entities.Bounty{}, err
		}
	}
	if len(m.WinningSubIDs) > 0 {
		if err := json.Unmarshal(m.WinningSubIDs, &bounty.WinningSubIDs); err != nil {
			return entities.Bounty{}, err
		}
	}
	return bounty, nil
}

type submissionModel struct {
	SubmissionID uint64    `gorm:"column:submission_id;primaryKey"`
	BountyID     uint64    `gorm:"column:bounty_id"`
	Solver       string    `gorm:"column:solver"`
	BlindedRef   string    `gorm:"column:blinded_ref"`
	Deposit      uint64    `gorm:"column:deposit"`
	RevealRef    string    `gorm:"column:reveal_ref"`
	Revealed     bool      `gorm:"column:revealed"`
	Replies      []byte    `gorm:"column:replies;type:jsonb"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (submissionModel) TableName() string {
	return "bounty_submissions"
}

func submissionModelFromEntity(submission entities.Submission) (submissionModel, error) {
	replies, err := json.Marshal(submission.Replies)
	if err != nil {
		return submissionModel{}, err
	}
	return submissionModel{
		SubmissionID: submission.SubmissionID,
		BountyID:     submission.BountyID,
		Solver:       strings.TrimSpace(submission.Solver),
		BlindedRef:   strings.TrimSpace(submission.BlindedRef),
		Deposit:      submission.Deposit,
		RevealRef:    strings.TrimSpace(submission.RevealRef),
		Revealed:     submission.Revealed,
		Replies:      replies,
		CreatedAt:    submission.CreatedAt.UTC(),
	}, nil
}

func (m submissionModel) toEntity() (entities.Submission, error) {
	submission := entities.Submission{
		SubmissionID: m.SubmissionID,
		BountyID:     m.BountyID,
		Solver:       m.Solver,
		BlindedRef:   m.BlindedRef,
		Deposit:      m.Deposit,
		RevealRef:    m.RevealRef,
		Revealed:     m.Revealed,
		CreatedAt:    m.CreatedAt.UTC(),
	}
	if len(m.Replies) > 0 {
		if err := json.Unmarshal(m.Replies, &submission.Replies); err != nil {
			return entities.Submission{}, err
		}
	}
	return submission, nil
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
	return "bounty_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.BountyRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
