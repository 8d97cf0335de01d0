package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"github.com/onlineshop/backend/internal/upload"
	"github.com/onlineshop/backend/internal/validation"
	"go.uber.org/zap"
)

// CreateStage is a step of the product creation flow
type CreateStage string

const (
	StageStarted    CreateStage = "started"
	StageUploading  CreateStage = "uploading"
	StageValidating CreateStage = "validating"
	StagePersisting CreateStage = "persisting"
	StageCommitted  CreateStage = "committed"
	StageRolledBack CreateStage = "rolled_back"
)

// Uploader is the interface that wraps the multipart upload handling used by product creation
type Uploader interface {
	// Method Parse reads a multipart request, stores its files and returns its fields and stored files.
	//
	// If storing fails, files stored so far are removed before the error is returned.
	Parse(r *http.Request) (*upload.Result, error)
	// Method Discard removes stored files, attempting every one of them.
	Discard(ctx context.Context, files []upload.File) error
}

// productService implements product management
type productService struct {
	db          TxBeginner
	productRepo ProductRepository
	userRepo    UserRepository
	uploader    Uploader
	txTimeout   time.Duration
	logger      *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	db TxBeginner,
	productRepo ProductRepository,
	userRepo UserRepository,
	uploader Uploader,
	txTimeout time.Duration,
	logger *zap.Logger,
) *productService {
	return &productService{
		db:          db,
		productRepo: productRepo,
		userRepo:    userRepo,
		uploader:    uploader,
		txTimeout:   txTimeout,
		logger:      logger,
	}
}

// productCreation tracks one run of the creation flow
type productCreation struct {
	stage  CreateStage
	files  []upload.File
	logger *zap.Logger
}

func (c *productCreation) enter(stage CreateStage) {
	c.logger.Debug("product creation stage", zap.String("from", string(c.stage)), zap.String("to", string(stage)))
	c.stage = stage
}

// Create runs the product creation flow for a multipart request:
// begin a READ COMMITTED transaction bounded by the configured timeout, store the uploaded files,
// validate the fields, insert the product and commit. Any failure rolls the transaction back
// and removes the files already stored.
func (s *productService) Create(ctx context.Context, userID int, r *http.Request) (*models.Product, error) {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	run := &productCreation{stage: StageStarted, logger: s.logger.With(zap.Int("user_id", userID))}
	run.logger.Debug("product creation stage", zap.String("to", string(StageStarted)))

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, s.fail(ctx, run, nil, fmt.Errorf("failed to begin transaction: %w", err))
	}

	run.enter(StageUploading)
	result, err := s.uploader.Parse(r.WithContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, run, tx, err)
	}
	run.files = result.Files

	run.enter(StageValidating)
	fields := validation.ProductFields{Title: result.Fields["title"], Price: result.Fields["price"]}
	details := validation.ValidateProduct(fields)
	image, hasImage := result.First()
	if !hasImage {
		details = append(details, "image required")
	}
	if len(details) > 0 {
		return nil, s.fail(ctx, run, tx, apperrors.UnprocessableEntity(apperrors.ErrInvalidProduct.Message, details))
	}

	price, err := strconv.Atoi(strings.TrimSpace(fields.Price))
	if err != nil {
		return nil, s.fail(ctx, run, tx, apperrors.Wrap(apperrors.BadRequest("price must be an integer"), err))
	}

	product := &models.Product{
		Title:  strings.TrimSpace(fields.Title),
		Price:  price,
		Image:  image.Path,
		UserID: &userID,
	}

	run.enter(StagePersisting)
	if err := s.productRepo.CreateTx(ctx, tx, product); err != nil {
		return nil, s.fail(ctx, run, tx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.fail(ctx, run, tx, fmt.Errorf("failed to commit transaction: %w", err))
	}
	run.enter(StageCommitted)

	s.logger.Info("product created", zap.Int("product_id", product.ID), zap.Int("user_id", userID))
	return product, nil
}

// fail rolls back, removes stored files and classifies the error with the stage it happened in.
// Cleanup failures are logged and never replace the original error.
func (s *productService) fail(ctx context.Context, run *productCreation, tx *sql.Tx, err error) error {
	failedAt := run.stage
	timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)

	if tx != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			run.logger.Warn("failed to roll back product transaction", zap.Error(rbErr))
		}
	}
	run.enter(StageRolledBack)

	if len(run.files) > 0 {
		// The request context may already be expired
		cleanupCtx := context.WithoutCancel(ctx)
		if dErr := s.uploader.Discard(cleanupCtx, run.files); dErr != nil {
			run.logger.Warn("failed to remove uploaded files", zap.Error(dErr))
		}
	}

	if timedOut {
		err = apperrors.Wrap(apperrors.ErrTxTimeout, err)
	}
	if apperrors.KindOf(err) == apperrors.KindInternal {
		run.logger.Error("product creation failed", zap.String("stage", string(failedAt)), zap.Error(err))
	}
	return fmt.Errorf("%s: %w", failedAt, err)
}

// Count returns how many products match the where condition
func (s *productService) Count(ctx context.Context, where filter.Where) (*models.Count, error) {
	count, err := s.productRepo.Count(ctx, where)
	if err != nil {
		return nil, err
	}
	return &models.Count{Count: count}, nil
}

// Find returns the products matching the filter, with their owners when "user" is included
func (s *productService) Find(ctx context.Context, f *filter.Filter) ([]models.ProductWithRelations, error) {
	if err := checkIncludes(f, "user"); err != nil {
		return nil, err
	}

	products, err := s.productRepo.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.withRelations(ctx, f, products)
}

// FindByID returns one product, with its owner when "user" is included
func (s *productService) FindByID(ctx context.Context, id int, f *filter.Filter) (*models.ProductWithRelations, error) {
	if err := checkIncludes(f, "user"); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.withRelations(ctx, f, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *productService) withRelations(ctx context.Context, f *filter.Filter, products []models.Product) ([]models.ProductWithRelations, error) {
	out := make([]models.ProductWithRelations, len(products))
	for i := range products {
		out[i].Product = products[i]
	}
	if !f.Includes("user") {
		return out, nil
	}

	refs := make([]*int, len(products))
	for i := range products {
		refs[i] = products[i].UserID
	}
	owners, err := loadOwners(ctx, s.userRepo, refs...)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].UserID != nil {
			out[i].User = owners[*out[i].UserID]
		}
	}
	return out, nil
}

// UpdateAll applies the patch to every product matching where
func (s *productService) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error) {
	count, err := s.productRepo.UpdateAll(ctx, patch, where)
	if err != nil {
		return nil, err
	}
	return &models.Count{Count: count}, nil
}

// UpdateByID applies the patch to one product
func (s *productService) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	return s.productRepo.UpdateByID(ctx, id, patch)
}

// ReplaceByID overwrites one product
func (s *productService) ReplaceByID(ctx context.Context, id int, product *models.Product) error {
	if strings.TrimSpace(product.Title) == "" {
		return apperrors.UnprocessableEntity(apperrors.ErrInvalidProduct.Message, []string{"title required"})
	}
	return s.productRepo.ReplaceByID(ctx, id, product)
}

// DeleteByID removes one product
func (s *productService) DeleteByID(ctx context.Context, id int) error {
	return s.productRepo.DeleteByID(ctx, id)
}

// GetOwner returns the user a product belongs to
func (s *productService) GetOwner(ctx context.Context, id int) (*models.User, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return findOwner(ctx, s.userRepo, product.UserID)
}
