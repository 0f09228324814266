package habits

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists habits, categories, and completions in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a habit store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ---------------------------------------------------------------------------
// Habits
// ---------------------------------------------------------------------------

// ListHabits returns all of a user's habits ordered by order_index.
func (s *Store) ListHabits(ctx context.Context, userID string) ([]Habit, error) {
	rows, err := s.pool.Query(ctx, "list_habits", userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()
	return scanHabits(rows)
}

// CreateHabit inserts a new habit at the end of the user's ordering and
// returns it with the generated id.
func (s *Store) CreateHabit(ctx context.Context, h Habit) (Habit, error) {
	h.ID = uuid.NewString()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO habits (id, user_id, category_id, title, tracking_type, target_value, unit, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			(SELECT COALESCE(MAX(order_index), -1) + 1 FROM habits WHERE user_id = $2))
		RETURNING order_index, created_at`,
		h.ID, h.UserID, h.CategoryID, h.Title, string(h.TrackingType), h.TargetValue, h.Unit,
	).Scan(&h.OrderIndex, &h.CreatedAt)
	if err != nil {
		return Habit{}, fmt.Errorf("create habit: %w", err)
	}
	return h, nil
}

// HabitPatch holds optional habit updates; nil fields are left unchanged.
type HabitPatch struct {
	Title       *string  `json:"title"`
	CategoryID  *string  `json:"category_id"`
	TargetValue *float64 `json:"target_value"`
	Unit        *string  `json:"unit"`
	Archived    *bool    `json:"archived"`
}

// UpdateHabit applies a patch to one of the user's habits.
func (s *Store) UpdateHabit(ctx context.Context, userID, habitID string, p HabitPatch) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE habits SET
			title = COALESCE($3, title),
			category_id = COALESCE($4, category_id),
			target_value = COALESCE($5, target_value),
			unit = COALESCE($6, unit),
			archived = COALESCE($7, archived)
		WHERE id = $1 AND user_id = $2`,
		habitID, userID, p.Title, p.CategoryID, p.TargetValue, p.Unit, p.Archived,
	)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteHabit removes a habit and its completions (FK cascade).
func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReorderHabits rewrites order_index to match the given id sequence.
func (s *Store) ReorderHabits(ctx context.Context, userID string, ids []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, id := range ids {
		if _, err := tx.Exec(ctx,
			`UPDATE habits SET order_index = $3 WHERE id = $1 AND user_id = $2`,
			id, userID, i,
		); err != nil {
			return fmt.Errorf("reorder habit %s: %w", id, err)
		}
	}
	return tx.Commit(ctx)
}

// SnapshotHabits returns the aggregation view of all the user's habits,
// archived included (the aggregator filters).
func (s *Store) SnapshotHabits(ctx context.Context, userID string) ([]Snapshot, error) {
	rows, err := s.pool.Query(ctx, "snapshot_habits", userID)
	if err != nil {
		return nil, fmt.Errorf("snapshot habits: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var sn Snapshot
		var tt string
		if err := rows.Scan(&sn.ID, &tt, &sn.TargetValue, &sn.Archived); err != nil {
			return nil, fmt.Errorf("scan habit snapshot: %w", err)
		}
		sn.TrackingType = TrackingType(tt)
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// ListCategories returns the user's categories, oldest first.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]Category, error) {
	rows, err := s.pool.Query(ctx, "list_categories", userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CreateCategory inserts a category and returns it with the generated id.
func (s *Store) CreateCategory(ctx context.Context, userID, name string) (Category, error) {
	c := Category{ID: uuid.NewString(), UserID: userID, Name: name}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (id, user_id, name) VALUES ($1, $2, $3)
		RETURNING created_at`,
		c.ID, userID, name,
	).Scan(&c.CreatedAt)
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// GetCategoryByName finds a category by name, if one exists.
func (s *Store) GetCategoryByName(ctx context.Context, userID, name string) (Category, bool, error) {
	var c Category
	err := s.pool.QueryRow(ctx, "category_by_name", userID, name).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return Category{}, false, nil
	}
	if err != nil {
		return Category{}, false, fmt.Errorf("category by name: %w", err)
	}
	return c, true, nil
}

// DeleteCategory removes a category; habits in it keep existing uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ---------------------------------------------------------------------------
// Completions
// ---------------------------------------------------------------------------

// UpsertCompletion records a day's entry for a habit, replacing any previous
// entry for the same day.
func (s *Store) UpsertCompletion(ctx context.Context, c Completion) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO habit_completions (habit_id, user_id, date, value, completed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (habit_id, date) DO UPDATE
		SET value = EXCLUDED.value, completed = EXCLUDED.completed`,
		c.HabitID, c.UserID, c.Date, c.Value, c.Completed,
	)
	if err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}
	return nil
}

// ListCompletions returns the user's completions in [from, to] inclusive.
func (s *Store) ListCompletions(ctx context.Context, userID, from, to string) ([]Completion, error) {
	rows, err := s.pool.Query(ctx, "list_completions", userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var comps []Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.HabitID, &c.UserID, &c.Date, &c.Value, &c.Completed); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// SnapshotCompletions returns the aggregation view of one day's completions.
func (s *Store) SnapshotCompletions(ctx context.Context, userID, date string) ([]CompletionSnapshot, error) {
	rows, err := s.pool.Query(ctx, "snapshot_completions", userID, date)
	if err != nil {
		return nil, fmt.Errorf("snapshot completions: %w", err)
	}
	defer rows.Close()

	var snaps []CompletionSnapshot
	for rows.Next() {
		var sn CompletionSnapshot
		if err := rows.Scan(&sn.HabitID, &sn.Value, &sn.Completed); err != nil {
			return nil, fmt.Errorf("scan completion snapshot: %w", err)
		}
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}

func scanHabits(rows pgx.Rows) ([]Habit, error) {
	var out []Habit
	for rows.Next() {
		var h Habit
		var tt string
		if err := rows.Scan(&h.ID, &h.UserID, &h.CategoryID, &h.Title, &tt,
			&h.TargetValue, &h.Unit, &h.OrderIndex, &h.Archived, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		h.TrackingType = TrackingType(tt)
		out = append(out, h)
	}
	return out, rows.Err()
}
