package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

const clientSelectQuery = `SELECT id, name, email, address, phone, created_at, updated_at FROM clients`

type clientRow struct {
	ID        int    `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Address   string `db:"address"`
	Phone     string `db:"phone"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r clientRow) model() models.Client {
	return models.Client{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Address:   r.Address,
		Phone:     r.Phone,
		CreatedAt: parseStamp(r.CreatedAt),
		UpdatedAt: parseStamp(r.UpdatedAt),
	}
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	var rows []clientRow
	if err := s.db.SelectContext(ctx, &rows, clientSelectQuery+" ORDER BY LOWER(name), id"); err != nil {
		return nil, backendErr("list clients", err)
	}
	clients := make([]models.Client, 0, len(rows))
	for _, r := range rows {
		clients = append(clients, r.model())
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id int) (models.Client, error) {
	var r clientRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind(clientSelectQuery+" WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, store.NotFound("client", id)
	}
	if err != nil {
		return models.Client{}, backendErr("get client", err)
	}
	return r.model(), nil
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) (models.Client, error) {
	now := s.stamp()
	var id int
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, "clients"); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO clients (id, name, email, address, phone, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			id, c.Name, c.Email, c.Address, c.Phone, now, now)
		return err
	})
	if err != nil {
		return models.Client{}, backendErr("create client", err)
	}
	return s.GetClient(ctx, id)
}

func (s *Store) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE clients SET name = ?, email = ?, address = ?, phone = ?,
		updated_at = ? WHERE id = ?`),
		c.Name, c.Email, c.Address, c.Phone, s.stamp(), c.ID)
	if err != nil {
		return models.Client{}, backendErr("update client", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Client{}, store.NotFound("client", c.ID)
	}
	return s.GetClient(ctx, c.ID)
}

func (s *Store) DeleteClient(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM clients WHERE id = ?"), id)
	if err != nil {
		return backendErr("delete client", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.NotFound("client", id)
	}
	return nil
}
