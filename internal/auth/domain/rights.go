// Package domain defines the authorization model of the platform: capability rights,
// sessions and their bearer claims, third-party applications and the handshake tokens
// they use to obtain delegated sessions.
package domain

import "math/bits"

// Rights is a bitmask of capabilities. Bit values are persisted and must never be renumbered.
type Rights int64

const (
	// SendQuestion allows asking questions.
	SendQuestion Rights = 1 << iota
	// AnswerQuestion allows answering received questions.
	AnswerQuestion
	// LikeQuestion allows liking answers.
	LikeQuestion
	// FollowUser allows following and unfollowing users.
	FollowUser
	// BlockUser allows blocking users.
	BlockUser
	// ReadTimeline allows reading the home timeline.
	ReadTimeline
	// DeleteQuestion allows deleting received questions.
	DeleteQuestion
	// ReadNotification allows reading notifications.
	ReadNotification
	// DeleteNotification allows deleting notifications.
	DeleteNotification
	// ReadWaitingQuestions allows reading questions waiting for an answer.
	ReadWaitingQuestions
	// PinQuestions allows pinning answered questions.
	PinQuestions
	// ReadRelationship allows reading follower and following relationships.
	ReadRelationship
	// ManageBlockedWords allows editing the blocked words list.
	ManageBlockedWords
	// InternalUseOnly marks a first-party credential. Never delegable to applications.
	InternalUseOnly
	// RefreshToken allows refreshing the credential.
	RefreshToken
)

// RightsInternal is the full capability set carried by first-party sessions.
const RightsInternal = SendQuestion | AnswerQuestion | LikeQuestion | FollowUser | BlockUser |
	ReadTimeline | DeleteQuestion | ReadNotification | DeleteNotification | ReadWaitingQuestions |
	PinQuestions | ReadRelationship | ManageBlockedWords | InternalUseOnly | RefreshToken

// RightsAll masks every known bit.
const RightsAll = RightsInternal

// DelegableRights is every capability an application may be registered with.
const DelegableRights = RightsAll &^ InternalUseOnly

type namedRight struct {
	name  string
	right Rights
}

// rightNames is ordered by bit value.
var rightNames = []namedRight{
	{"sendQuestion", SendQuestion},
	{"answerQuestion", AnswerQuestion},
	{"likeQuestion", LikeQuestion},
	{"followUser", FollowUser},
	{"blockUser", BlockUser},
	{"readTimeline", ReadTimeline},
	{"deleteQuestion", DeleteQuestion},
	{"readNotification", ReadNotification},
	{"deleteNotification", DeleteNotification},
	{"readWaitingQuestion", ReadWaitingQuestions},
	{"pinQuestion", PinQuestions},
	{"readRelationship", ReadRelationship},
	{"manageBlockedWords", ManageBlockedWords},
	{"internalUseOnly", InternalUseOnly},
	{"refreshToken", RefreshToken},
}

// RightNames returns the capability names ordered by bit value.
func RightNames() []string {
	names := make([]string, len(rightNames))
	for i, nr := range rightNames {
		names[i] = nr.name
	}
	return names
}

// DecodeRights expands r into one boolean per known capability. Unknown bits are dropped.
func DecodeRights(r Rights) map[string]bool {
	flags := make(map[string]bool, len(rightNames))
	for _, nr := range rightNames {
		flags[nr.name] = r&nr.right != 0
	}
	return flags
}

// EncodeRights starts from ceiling and applies the requested flags: true sets the bit,
// false clears it, absent names inherit the ceiling. Unknown names are ignored.
// The result is not capped at ceiling; see CapRights.
func EncodeRights(requested map[string]bool, ceiling Rights) Rights {
	r := ceiling & RightsAll
	for _, nr := range rightNames {
		value, ok := requested[nr.name]
		if !ok {
			continue
		}
		if value {
			r |= nr.right
		} else {
			r &^= nr.right
		}
	}
	return r
}

// CapRights encodes requested against ceiling and drops every bit the ceiling does not hold.
func CapRights(requested map[string]bool, ceiling Rights) Rights {
	return EncodeRights(requested, ceiling) & ceiling
}

// Has reports whether r holds every bit of required.
func (r Rights) Has(required Rights) bool {
	return r&required == required
}

// Named returns the names of the capabilities set in r, ordered by bit value.
func (r Rights) Named() []string {
	names := make([]string, 0, bits.OnesCount64(uint64(r&RightsAll)))
	for _, nr := range rightNames {
		if r&nr.right != 0 {
			names = append(names, nr.name)
		}
	}
	return names
}

// Known drops every bit outside the known capability set.
func (r Rights) Known() Rights {
	return r & RightsAll
}
