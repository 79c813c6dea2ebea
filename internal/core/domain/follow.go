package domain

// Follow records that UserID subscribes to posts by AuthorID.
type Follow struct {
	ID       int64 `json:"id"`
	UserID   int64 `json:"user_id"`
	AuthorID int64 `json:"author_id"`

	User   User `json:"-"`
	Author User `json:"-"`
}

// NewFollow returns a follow, refusing self-subscriptions.
func NewFollow(userID, authorID int64) (*Follow, error) {
	if userID == authorID {
		return nil, ErrSelfFollow
	}
	return &Follow{UserID: userID, AuthorID: authorID}, nil
}

func (f Follow) String() string {
	return f.User.Username + " - " + f.Author.Username
}
