package onsite

import "errors"

var (
	ErrNoSiteManager          = errors.New("this site has no manager to receive messages")
	ErrMessageNotFound        = errors.New("message not found")
	ErrMessageAlreadyResolved = errors.New("message has already been resolved")
	ErrInvalidPhoto           = errors.New("photo must be a jpg or png image")
	ErrPhotoTooLarge          = errors.New("photo size must not exceed 10MB")
	ErrNotMessageRecipient    = errors.New("only the site manager or an admin can resolve this message")
)
