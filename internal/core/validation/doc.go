// Package validation provides pure validation of submitted forms and uploads.
//
// This package contains the functional core logic for validating HTML form
// and JSON API input before anything touches the store. All functions are
// pure (no I/O, no side effects).
//
// # Functions
//
//   - ValidatePostForm: text and optional group selection of a post
//   - ValidateCommentForm: comment body
//   - ValidateSignupForm: account creation fields and password confirmation
//   - ValidatePasswordChange: new password confirmation
//   - DetectImage: sniff an upload and return its canonical extension
//
// # Usage
//
//	form, errs := validation.ValidatePostForm(text, groupID)
//	if errs != nil {
//	    // Re-render the form with errs
//	}
package validation
