package model

import "errors"

var ErrorNotFound = errors.New("not found")
var ErrorForbidden = errors.New("forbidden")
var ErrorPasswordRequired = errors.New("password required")
var ErrorPasswordRejected = errors.New("password rejected")
var ErrorSelfAction = errors.New("cannot follow yourself")
var ErrorValidation = errors.New("invalid input")
var ErrorUsernameTaken = errors.New("username already taken")
var ErrorEmailTaken = errors.New("email already taken")
var ErrorInvalidCredentials = errors.New("invalid username or password")
var ErrorNotVerified = errors.New("email address not verified")
var ErrorInvalidToken = errors.New("invalid or expired token")
var ErrorMailDelivery = errors.New("sending mail failed")
