// Package memory keeps every aggregate in process memory. It backs local runs and tests;
// all repositories share one lock so cross-entity operations stay atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "rento/internal/domain/booking"
	domainfavorites "rento/internal/domain/favorites"
	domainlistings "rento/internal/domain/listings"
	domainreviews "rento/internal/domain/reviews"
	"rento/internal/domain/shared/events"
	domainuser "rento/internal/domain/user"
)

type favoriteKey struct {
	user    string
	listing domainlistings.ListingID
}

type Store struct {
	mu        sync.RWMutex
	listings  map[domainlistings.ListingID]*domainlistings.Listing
	bookings  map[domainbooking.BookingID]*domainbooking.Booking
	reviews   map[domainreviews.ReviewID]*domainreviews.Review
	favorites map[favoriteKey]domainfavorites.Favorite
	users     map[domainuser.ID]*domainuser.User
	emails    map[string]domainuser.ID
}

func NewStore() *Store {
	return &Store{
		listings:  make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings:  make(map[domainbooking.BookingID]*domainbooking.Booking),
		reviews:   make(map[domainreviews.ReviewID]*domainreviews.Review),
		favorites: make(map[favoriteKey]domainfavorites.Favorite),
		users:     make(map[domainuser.ID]*domainuser.User),
		emails:    make(map[string]domainuser.ID),
	}
}

func (s *Store) Listings() *ListingRepository   { return &ListingRepository{s: s} }
func (s *Store) Bookings() *BookingRepository   { return &BookingRepository{s: s} }
func (s *Store) Reviews() *ReviewRepository     { return &ReviewRepository{s: s} }
func (s *Store) Favorites() *FavoriteRepository { return &FavoriteRepository{s: s} }
func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }

func canceled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

// ListingRepository implements listings.Repository.
type ListingRepository struct{ s *Store }

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	listing, ok := r.s.listings[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if err := canceled(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[id]; !ok {
		return domainlistings.ErrNotFound
	}
	for bid, b := range r.s.bookings {
		if b.ListingID == id {
			delete(r.s.bookings, bid)
		}
	}
	for rid, rv := range r.s.reviews {
		if rv.ListingID == id {
			delete(r.s.reviews, rid)
		}
	}
	for key := range r.s.favorites {
		if key.listing == id {
			delete(r.s.favorites, key)
		}
	}
	delete(r.s.listings, id)
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	opts := params.Normalized()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matches := make([]*domainlistings.Listing, 0, len(r.s.listings))
	for _, listing := range r.s.listings {
		if err := canceled(ctx); err != nil {
			return nil, err
		}
		if opts.Matches(listing) {
			matches = append(matches, cloneListing(listing))
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return opts.Less(matches[i], matches[j]) })
	return matches, nil
}

func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.listings), nil
}

// BookingRepository implements booking.Repository.
type BookingRepository struct{ s *Store }

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ListActiveByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.s.bookings {
		if b.ListingID == listingID && b.Blocking() {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out, nil
}

func (r *BookingRepository) ListByRequester(ctx context.Context, requesterID string, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.s.bookings {
		if b.RequesterID != requesterID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Insert checks for overlaps and stores the booking under the write lock, so two
// concurrent inserts for the same dates cannot both succeed.
func (r *BookingRepository) Insert(ctx context.Context, booking *domainbooking.Booking) error {
	if err := canceled(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[booking.ListingID]; !ok {
		return domainlistings.ErrNotFound
	}
	if _, exists := r.s.bookings[booking.ID]; exists {
		return domainbooking.ErrOverlap
	}
	if booking.Blocking() {
		for _, existing := range r.s.bookings {
			if existing.ListingID == booking.ListingID && existing.Blocking() && existing.Range.Overlaps(booking.Range) {
				return domainbooking.ErrOverlap
			}
		}
	}
	r.s.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *domainbooking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.bookings[booking.ID]
	if !ok {
		return domainbooking.ErrNotFound
	}
	stored.Status = booking.Status
	stored.UpdatedAt = booking.UpdatedAt
	return nil
}

// ReviewRepository implements reviews.Repository.
type ReviewRepository struct{ s *Store }

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return cloneReview(rv), nil
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domainreviews.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[review.ListingID]; !ok {
		return domainlistings.ErrNotFound
	}
	for _, existing := range r.s.reviews {
		if existing.ListingID == review.ListingID && existing.AuthorID == review.AuthorID {
			return domainreviews.ErrDuplicate
		}
	}
	r.s.reviews[review.ID] = cloneReview(review)
	return nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *domainreviews.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[review.ID]; !ok {
		return domainreviews.ErrNotFound
	}
	r.s.reviews[review.ID] = cloneReview(review)
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return domainreviews.ErrNotFound
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	return r.list(func(rv *domainreviews.Review) bool { return rv.ListingID == listingID }), nil
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domainreviews.Review, error) {
	return r.list(func(rv *domainreviews.Review) bool { return rv.AuthorID == authorID }), nil
}

func (r *ReviewRepository) Stats(ctx context.Context, listingID domainlistings.ListingID) (domainreviews.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ratings := make([]int, 0)
	for _, rv := range r.s.reviews {
		if rv.ListingID == listingID {
			ratings = append(ratings, rv.Rating)
		}
	}
	return domainreviews.Summarize(ratings), nil
}

func (r *ReviewRepository) list(keep func(*domainreviews.Review) bool) []*domainreviews.Review {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domainreviews.Review, 0)
	for _, rv := range r.s.reviews {
		if keep(rv) {
			out = append(out, cloneReview(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// FavoriteRepository implements favorites.Repository.
type FavoriteRepository struct{ s *Store }

func (r *FavoriteRepository) Add(ctx context.Context, fav domainfavorites.Favorite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[fav.ListingID]; !ok {
		return domainlistings.ErrNotFound
	}
	key := favoriteKey{user: fav.UserID, listing: fav.ListingID}
	if _, exists := r.s.favorites[key]; exists {
		return domainfavorites.ErrAlreadyFavorite
	}
	r.s.favorites[key] = fav
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID string, listingID domainlistings.ListingID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := favoriteKey{user: userID, listing: listingID}
	if _, ok := r.s.favorites[key]; !ok {
		return domainfavorites.ErrNotFound
	}
	delete(r.s.favorites, key)
	return nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]domainfavorites.Favorite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domainfavorites.Favorite, 0)
	for key, fav := range r.s.favorites {
		if key.user == userID {
			out = append(out, fav)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ListingID > out[j].ListingID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UserRepository implements user.Repository.
type UserRepository struct{ s *Store }

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	if u == nil || strings.TrimSpace(string(u.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	emailKey := strings.ToLower(strings.TrimSpace(u.Email))
	if emailKey == "" {
		return domainuser.ErrEmailRequired
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if owner, ok := r.s.emails[emailKey]; ok && owner != u.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if previous, ok := r.s.users[u.ID]; ok && previous.Email != emailKey {
		delete(r.s.emails, previous.Email)
	}
	r.s.emails[emailKey] = u.ID
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	c := *l
	c.EventRecorder = events.EventRecorder{}
	if l.Geo != nil {
		geo := *l.Geo
		c.Geo = &geo
	}
	return &c
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.EventRecorder = events.EventRecorder{}
	return &c
}

func cloneReview(r *domainreviews.Review) *domainreviews.Review {
	c := *r
	c.EventRecorder = events.EventRecorder{}
	return &c
}

func cloneUser(u *domainuser.User) *domainuser.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

var (
	_ domainlistings.Repository  = (*ListingRepository)(nil)
	_ domainbooking.Repository   = (*BookingRepository)(nil)
	_ domainreviews.Repository   = (*ReviewRepository)(nil)
	_ domainfavorites.Repository = (*FavoriteRepository)(nil)
	_ domainuser.Repository      = (*UserRepository)(nil)
)
