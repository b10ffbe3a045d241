package memory

import (
	"context"
	"fmt"

	"boxrental-backend/internal/domain"
)

func missing(entity string) error {
	return fmt.Errorf("%w: %s", domain.ErrNotFound, entity)
}

type boxRepo struct{ v *view }

func (r *boxRepo) Create(_ context.Context, b *domain.Box) error {
	st, release := r.v.acquire()
	defer release()
	for _, other := range st.boxes {
		if other.Number == b.Number {
			return fmt.Errorf("%w: box number already in use", domain.ErrInvalidRequest)
		}
	}
	b.ID = st.id("boxes")
	b.Occupied = false
	b.CreatedOn = r.v.store.now()
	st.boxes[b.ID] = *b
	return nil
}

func (r *boxRepo) GetByID(_ context.Context, id int32) (*domain.Box, error) {
	st, release := r.v.acquire()
	defer release()
	b, ok := st.boxes[id]
	if !ok {
		return nil, missing("box")
	}
	return &b, nil
}

// GetForUpdate needs no extra locking: transactions already run one at a time.
func (r *boxRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Box, error) {
	return r.GetByID(ctx, id)
}

func (r *boxRepo) List(_ context.Context) ([]domain.Box, error) {
	st, release := r.v.acquire()
	defer release()
	boxes := make([]domain.Box, 0, len(st.boxes))
	for _, id := range sortedKeys(st.boxes) {
		boxes = append(boxes, st.boxes[id])
	}
	return boxes, nil
}

func (r *boxRepo) Update(_ context.Context, b *domain.Box) error {
	st, release := r.v.acquire()
	defer release()
	cur, ok := st.boxes[b.ID]
	if !ok {
		return missing("box")
	}
	for id, other := range st.boxes {
		if id != b.ID && other.Number == b.Number {
			return fmt.Errorf("%w: box number already in use", domain.ErrInvalidRequest)
		}
	}
	cur.Number = b.Number
	cur.MonthlyPriceCents = b.MonthlyPriceCents
	st.boxes[b.ID] = cur
	*b = cur
	return nil
}

func (r *boxRepo) SetOccupied(_ context.Context, id int32, occupied bool) error {
	st, release := r.v.acquire()
	defer release()
	b, ok := st.boxes[id]
	if !ok {
		return missing("box")
	}
	b.Occupied = occupied
	st.boxes[id] = b
	return nil
}

func (r *boxRepo) Delete(_ context.Context, id int32) error {
	st, release := r.v.acquire()
	defer release()
	if _, ok := st.boxes[id]; !ok {
		return missing("box")
	}
	delete(st.boxes, id)
	for rid, rt := range st.rentals {
		if rt.BoxID == id {
			delete(st.rentals, rid)
		}
	}
	return nil
}

func (r *boxRepo) ListOccupancyDrift(_ context.Context) ([]domain.BoxDrift, error) {
	st, release := r.v.acquire()
	defer release()
	active := make(map[int32]int32)
	for _, rt := range st.rentals {
		if rt.Active {
			active[rt.BoxID]++
		}
	}
	var drift []domain.BoxDrift
	for _, id := range sortedKeys(st.boxes) {
		b := st.boxes[id]
		n := active[id]
		if (b.Occupied && n != 1) || (!b.Occupied && n > 0) {
			drift = append(drift, domain.BoxDrift{BoxID: id, Number: b.Number, Occupied: b.Occupied, ActiveRentals: n})
		}
	}
	return drift, nil
}

type rentalRepo struct{ v *view }

func (r *rentalRepo) Create(_ context.Context, rt *domain.Rental) error {
	st, release := r.v.acquire()
	defer release()
	if _, ok := st.clients[rt.ClientID]; !ok {
		return fmt.Errorf("%w: referenced record does not exist (client)", domain.ErrInvalidRequest)
	}
	if _, ok := st.boxes[rt.BoxID]; !ok {
		return fmt.Errorf("%w: referenced record does not exist (box)", domain.ErrInvalidRequest)
	}
	if rt.Active {
		for _, other := range st.rentals {
			if other.Active && other.BoxID == rt.BoxID {
				return fmt.Errorf("%w: box invalid or already occupied", domain.ErrInvalidRequest)
			}
		}
	}
	rt.ID = st.id("rentals")
	stored := *rt
	stored.Client, stored.Box = nil, nil
	st.rentals[rt.ID] = stored
	return nil
}

func (r *rentalRepo) GetByID(_ context.Context, id int32) (*domain.Rental, error) {
	st, release := r.v.acquire()
	defer release()
	rt, ok := st.rentals[id]
	if !ok {
		return nil, missing("rental")
	}
	return &rt, nil
}

func (r *rentalRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r *rentalRepo) Close(_ context.Context, rt *domain.Rental) error {
	st, release := r.v.acquire()
	defer release()
	cur, ok := st.rentals[rt.ID]
	if !ok || !cur.Active {
		return fmt.Errorf("%w: rental not found or already closed", domain.ErrInvalidRequest)
	}
	cur.Active = false
	cur.EndedAt = rt.EndedAt
	st.rentals[rt.ID] = cur
	rt.Active = false
	return nil
}

func (r *rentalRepo) Delete(_ context.Context, id int32) error {
	st, release := r.v.acquire()
	defer release()
	if _, ok := st.rentals[id]; !ok {
		return missing("rental")
	}
	delete(st.rentals, id)
	return nil
}

func (r *rentalRepo) ListWithRelations(_ context.Context) ([]domain.Rental, error) {
	st, release := r.v.acquire()
	defer release()
	rentals := make([]domain.Rental, 0, len(st.rentals))
	for _, id := range sortedKeys(st.rentals) {
		rt := st.rentals[id]
		c, okc := st.clients[rt.ClientID]
		b, okb := st.boxes[rt.BoxID]
		if !okc || !okb {
			continue
		}
		rt.Client = &c
		rt.Box = &b
		rentals = append(rentals, rt)
	}
	return rentals, nil
}

func (r *rentalRepo) CountActiveByBox(_ context.Context, boxID int32) (int32, error) {
	st, release := r.v.acquire()
	defer release()
	var n int32
	for _, rt := range st.rentals {
		if rt.Active && rt.BoxID == boxID {
			n++
		}
	}
	return n, nil
}

func (r *rentalRepo) CountActiveByClient(_ context.Context, clientID int32) (int32, error) {
	st, release := r.v.acquire()
	defer release()
	var n int32
	for _, rt := range st.rentals {
		if rt.Active && rt.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

type clientRepo struct{ v *view }

func (r *clientRepo) Create(_ context.Context, c *domain.Client) error {
	st, release := r.v.acquire()
	defer release()
	c.ID = st.id("clients")
	c.CreatedOn = r.v.store.now()
	stored := *c
	stored.Rentals = nil
	st.clients[c.ID] = stored
	return nil
}

func (r *clientRepo) GetByID(_ context.Context, id int32) (*domain.Client, error) {
	st, release := r.v.acquire()
	defer release()
	c, ok := st.clients[id]
	if !ok {
		return nil, missing("client")
	}
	return &c, nil
}

func (r *clientRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Client, error) {
	return r.GetByID(ctx, id)
}

func (r *clientRepo) GetWithActiveRentals(_ context.Context, id int32) (*domain.Client, error) {
	st, release := r.v.acquire()
	defer release()
	c, ok := st.clients[id]
	if !ok {
		return nil, missing("client")
	}
	for _, rid := range sortedKeys(st.rentals) {
		rt := st.rentals[rid]
		if rt.ClientID != id || !rt.Active {
			continue
		}
		if b, ok := st.boxes[rt.BoxID]; ok {
			rt.Box = &b
		}
		c.Rentals = append(c.Rentals, rt)
	}
	return &c, nil
}

func (r *clientRepo) List(_ context.Context) ([]domain.Client, error) {
	st, release := r.v.acquire()
	defer release()
	clients := make([]domain.Client, 0, len(st.clients))
	for _, id := range sortedKeys(st.clients) {
		clients = append(clients, st.clients[id])
	}
	return clients, nil
}

func (r *clientRepo) Update(_ context.Context, c *domain.Client) error {
	st, release := r.v.acquire()
	defer release()
	cur, ok := st.clients[c.ID]
	if !ok {
		return missing("client")
	}
	cur.Name, cur.Phone, cur.Email, cur.Plate = c.Name, c.Phone, c.Email, c.Plate
	st.clients[c.ID] = cur
	c.CreatedOn = cur.CreatedOn
	return nil
}

func (r *clientRepo) Delete(_ context.Context, id int32) error {
	st, release := r.v.acquire()
	defer release()
	if _, ok := st.clients[id]; !ok {
		return missing("client")
	}
	delete(st.clients, id)
	for rid, rt := range st.rentals {
		if rt.ClientID == id {
			delete(st.rentals, rid)
		}
	}
	for pid, p := range st.payments {
		if p.ClientID == id {
			delete(st.payments, pid)
		}
	}
	return nil
}

type paymentRepo struct{ v *view }

func (r *paymentRepo) Create(_ context.Context, p *domain.Payment) error {
	st, release := r.v.acquire()
	defer release()
	if _, ok := st.clients[p.ClientID]; !ok {
		return fmt.Errorf("%w: referenced record does not exist (client)", domain.ErrInvalidRequest)
	}
	p.ID = st.id("payments")
	p.CreatedOn = r.v.store.now()
	stored := *p
	stored.Client = nil
	st.payments[p.ID] = stored
	return nil
}

func (r *paymentRepo) ListWithClient(_ context.Context) ([]domain.Payment, error) {
	st, release := r.v.acquire()
	defer release()
	payments := make([]domain.Payment, 0, len(st.payments))
	for _, id := range sortedKeys(st.payments) {
		p := st.payments[id]
		if c, ok := st.clients[p.ClientID]; ok {
			p.Client = &c
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (r *paymentRepo) Delete(_ context.Context, id int32) error {
	st, release := r.v.acquire()
	defer release()
	if _, ok := st.payments[id]; !ok {
		return missing("payment")
	}
	delete(st.payments, id)
	return nil
}

type userRepo struct{ v *view }

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	st, release := r.v.acquire()
	defer release()
	for _, other := range st.users {
		if equalFold(other.Email, u.Email) {
			return fmt.Errorf("%w: email already registered", domain.ErrInvalidRequest)
		}
	}
	u.ID = st.id("users")
	u.CreatedOn = r.v.store.now()
	st.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int32) (*domain.User, error) {
	st, release := r.v.acquire()
	defer release()
	u, ok := st.users[id]
	if !ok {
		return nil, missing("user")
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	st, release := r.v.acquire()
	defer release()
	for _, u := range st.users {
		if equalFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, missing("user")
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	st, release := r.v.acquire()
	defer release()
	users := make([]domain.User, 0, len(st.users))
	for _, id := range sortedKeys(st.users) {
		users = append(users, st.users[id])
	}
	return users, nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id int32, hash string) error {
	return r.mutate(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *userRepo) UpdateLevel(_ context.Context, id int32, level int16) error {
	return r.mutate(id, func(u *domain.User) { u.Level = level })
}

func (r *userRepo) TouchLastLogin(_ context.Context, id int32) error {
	now := r.v.store.now()
	return r.mutate(id, func(u *domain.User) { u.LastLoginAt = &now })
}

func (r *userRepo) mutate(id int32, fn func(u *domain.User)) error {
	st, release := r.v.acquire()
	defer release()
	u, ok := st.users[id]
	if !ok {
		return missing("user")
	}
	fn(&u)
	st.users[id] = u
	return nil
}

type logRepo struct{ v *view }

func (r *logRepo) Create(_ context.Context, e *domain.LogEntry) error {
	st, release := r.v.acquire()
	defer release()
	e.ID = st.id("log_entries")
	e.CreatedOn = r.v.store.now()
	st.logs = append(st.logs, *e)
	return nil
}

func (r *logRepo) List(_ context.Context, limit int32) ([]domain.LogEntry, error) {
	st, release := r.v.acquire()
	defer release()
	var entries []domain.LogEntry
	for i := len(st.logs) - 1; i >= 0 && int32(len(entries)) < limit; i-- {
		entries = append(entries, st.logs[i])
	}
	return entries, nil
}
