package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"campusplan.org/internal/directory"
	"campusplan.org/internal/interval"
)

// Store backs both stateful collaborators of the scheduling core with
// Postgres: the directory gateway and the committed-interval store.
type Store struct {
	db *sql.DB
}

var (
	_ directory.Gateway = (*Store)(nil)
	_ interval.Store    = (*Store)(nil)
)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// GetClassRoster returns the ids of active students enrolled in the class.
// A missing class yields an empty roster, not an error.
func (s *Store) GetClassRoster(ctx context.Context, classID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		select e.student_id
		from enrollments e
		join students st on st.id = e.student_id and st.status = 'active'
		where e.class_id = $1
		order by e.student_id
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("%w: roster %d: %v", directory.ErrUnavailable, classID, err)
	}
	defer rows.Close()

	var roster []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: roster %d: %v", directory.ErrUnavailable, classID, err)
		}
		roster = append(roster, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: roster %d: %v", directory.ErrUnavailable, classID, err)
	}
	return roster, nil
}

func (s *Store) IsInClass(ctx context.Context, userID, classID int64) (bool, error) {
	var in bool
	err := s.db.QueryRowContext(ctx, `
		select exists(
			select 1
			from enrollments e
			join students st on st.id = e.student_id and st.status = 'active'
			where e.class_id = $1 and e.student_id = $2
		)
	`, classID, userID).Scan(&in)
	if err != nil {
		return false, fmt.Errorf("%w: membership %d/%d: %v", directory.ErrUnavailable, userID, classID, err)
	}
	return in, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `select id from students where status = 'active' order by id`)
	if err != nil {
		return nil, fmt.Errorf("%w: students: %v", directory.ErrUnavailable, err)
	}
	defer rows.Close()

	var students []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: students: %v", directory.ErrUnavailable, err)
		}
		students = append(students, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: students: %v", directory.ErrUnavailable, err)
	}
	return students, nil
}

func (s *Store) GetCommitted(ctx context.Context, participant directory.Identity) ([]interval.Committed, error) {
	rows, err := s.db.QueryContext(ctx, `
		select event_id, starts_at, ends_at
		from committed_intervals
		where user_id = $1 and user_role = $2
		order by starts_at
	`, participant.ID, string(participant.Role))
	if err != nil {
		return nil, fmt.Errorf("committed for %d/%s: %w", participant.ID, participant.Role, err)
	}
	defer rows.Close()

	var committed []interval.Committed
	for rows.Next() {
		var c interval.Committed
		if err := rows.Scan(&c.EventID, &c.Start, &c.End); err != nil {
			return nil, fmt.Errorf("committed for %d/%s: %w", participant.ID, participant.Role, err)
		}
		committed = append(committed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("committed for %d/%s: %w", participant.ID, participant.Role, err)
	}
	return committed, nil
}

func (s *Store) Commit(ctx context.Context, participant directory.Identity, c interval.Committed) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		insert into committed_intervals(event_id, user_id, user_role, starts_at, ends_at)
		values ($1, $2, $3, $4, $5)
	`, c.EventID, participant.ID, string(participant.Role), c.Start, c.End)
	if err != nil {
		return fmt.Errorf("commit interval for %d/%s: %w", participant.ID, participant.Role, err)
	}
	return nil
}

func (s *Store) Release(ctx context.Context, participant directory.Identity, eventID string) error {
	_, err := s.db.ExecContext(ctx, `
		delete from committed_intervals
		where event_id = $1 and user_id = $2 and user_role = $3
	`, eventID, participant.ID, string(participant.Role))
	if err != nil {
		return fmt.Errorf("release interval for %d/%s: %w", participant.ID, participant.Role, err)
	}
	return nil
}
