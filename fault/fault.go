// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type AuthorizationError GenericError
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAccountAlreadyExists        = ExistsError("account already exists")
	ErrAccountNotFound             = NotFoundError("account not found")
	ErrAlreadyInitialised          = ProcessError("already initialised")
	ErrCannotDecodeIdentity        = InvalidError("cannot decode identity")
	ErrCannotDecodePacket          = ProcessError("cannot decode packet")
	ErrChannelAlreadyOpen          = ExistsError("channel already open")
	ErrChannelCloseNotSupported    = InvalidError("channel close is not supported")
	ErrChannelNotFound             = NotFoundError("channel not found")
	ErrChannelNotOpen              = ProcessError("channel not open")
	ErrChecksumMismatch            = InvalidError("checksum mismatch")
	ErrClientMismatch              = InvalidError("counterparty client does not match registered client")
	ErrConfigurationIsNotATable    = InvalidError("configuration script must return a table")
	ErrDescriptionTooLong          = InvalidError("description too long")
	ErrFundsMismatch               = InvalidError("attached funds do not match simulated install cost")
	ErrInvalidChain                = InvalidError("invalid chain")
	ErrInvalidChainName            = InvalidError("invalid chain name")
	ErrInvalidChannelOrder         = InvalidError("channel ordering must be ordered")
	ErrInvalidCount                = InvalidError("invalid count")
	ErrInvalidCursor               = InvalidError("invalid cursor")
	ErrInvalidGovernance           = InvalidError("invalid governance value")
	ErrInvalidGovernanceKind       = InvalidError("invalid external governance kind")
	ErrInvalidKeyLength            = InvalidError("key length is invalid")
	ErrInvalidKeyType              = InvalidError("key type is invalid")
	ErrInvalidSignature            = InvalidError("invalid signature")
	ErrLinkTooLong                 = InvalidError("link too long")
	ErrModuleLimitReached          = InvalidError("module whitelist limit reached")
	ErrMustBeRemote                = InvalidError("registration must originate from a remote chain")
	ErrNameTooLong                 = InvalidError("name too long")
	ErrNameTooShort                = InvalidError("name too short")
	ErrNoOwner                     = InvalidError("ownership has been renounced")
	ErrNotInitialised              = ProcessError("not initialised")
	ErrNotOwner                    = AuthorizationError("not the current owner")
	ErrNotPendingOwner             = AuthorizationError("not the pending owner")
	ErrNotPublicKey                = InvalidError("not a public key")
	ErrPendingEffectNotFound       = NotFoundError("pending effect not found")
	ErrRecursionLimit              = InvalidError("sub-account nesting limit reached")
	ErrRemoteAccountNotFound       = NotFoundError("remote account not found")
	ErrRemoteChainExists           = ExistsError("remote chain already registered")
	ErrRenounceWithSubAccounts     = InvalidError("cannot renounce an account with sub-accounts")
	ErrSubAccountCreatorNotAccount = AuthorizationError("sub-account creator is not the account controller")
	ErrSubAccountNotFound          = NotFoundError("sub-account not found")
	ErrTopLevelOwnerUnresolved     = ProcessError("top level owner is unresolved")
	ErrTransferExpired             = InvalidError("pending ownership transfer has expired")
	ErrTransferNotFound            = NotFoundError("no pending ownership transfer")
	ErrTransferOfNftOwned          = InvalidError("cannot transfer nft owned account")
	ErrTransactionInUse            = ProcessError("transaction already in use")
	ErrTransferToRenounced         = InvalidError("cannot transfer ownership to renounced, use renounce")
	ErrUnsupportedVersion          = InvalidError("unsupported channel version")
	ErrWrongNetworkForPublicKey    = InvalidError("wrong network for public key")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e AuthorizationError) Error() string { return string(e) }
func (e ExistsError) Error() string        { return string(e) }
func (e InvalidError) Error() string       { return string(e) }
func (e NotFoundError) Error() string      { return string(e) }
func (e ProcessError) Error() string       { return string(e) }

// determine the class of an error
func IsErrAuthorization(e error) bool { _, ok := e.(AuthorizationError); return ok }
func IsErrExists(e error) bool        { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool       { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool      { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool       { _, ok := e.(ProcessError); return ok }
