package booking

// Action is a lifecycle operation on a booking.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// Next returns the status an action leads to from the current status.
// pending -> confirmed, pending|confirmed -> cancelled; anything else is ErrInvalidTransition.
func Next(current Status, action Action) (Status, error) {
	switch action {
	case ActionConfirm:
		if current == StatusPending {
			return StatusConfirmed, nil
		}
	case ActionCancel:
		if current == StatusPending || current == StatusConfirmed {
			return StatusCancelled, nil
		}
	}
	return current, ErrInvalidTransition
}
