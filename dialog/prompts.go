package dialog

import (
	"fmt"

	"github.com/room4-2/OrderDesk/catalog"
)

const (
	promptGreeting = "Hello! This is the delivery assistant. Please say your Order I D. For example, say: one two three."

	promptVerifyEmpty       = "I did not catch that. Please say your Order I D, like one two three."
	promptVerifyParseFailed = "Sorry, I did not hear an order number. Please say your order I D, for example: one two three."
	promptVerifyNotFound    = "I couldn't find that order I D. Please say your order I D, for example: one two three."

	promptReturnOrKeep     = "If you want to return the product, say: I want to return. Otherwise say keep."
	promptAfterDeliveryBad = "Sorry, I did not get that. If you want to return the product, say: I want to return. Otherwise say: keep."

	promptRetentionIntro   = "I can help with a return, but first, let me offer you something better."
	promptRetentionNext    = "No problem. How about this:"
	promptRetentionEmpty   = "Please say yes to accept the offer or no to hear another offer."
	promptRetentionUnclear = "I did not catch that. You can say yes to accept or no to hear another offer."

	promptHumanOffer   = "Would you like me to transfer you to a live human agent to help with your return?"
	promptHumanEmpty   = "Would you like me to transfer you to a live human agent?"
	promptHumanUnclear = "Please say yes to transfer to a human agent, or no to continue."

	promptReturnConfirm        = "Are you really sure you want to return the product? Please say yes or no."
	promptReturnConfirmUnclear = "Please say yes to confirm return or no to keep the order."

	sayTransfer        = "Okay, transferring the call. Goodbye."
	sayKeepDelivery    = "Okay, thanks for confirming. We will proceed with delivery as scheduled. Have a great day!"
	sayReturnConfirmed = "Okay. Your return request is confirmed. We will send you the return instructions by email. Thank you!"
	sayReturnDeclined  = "Okay, we will proceed with delivery as scheduled. Thank you!"
	sayGoodbye         = "Thanks for calling. Goodbye."
)

var (
	hintsDigits     = []string{"one", "two", "three", "numbers"}
	hintsReturnKeep = []string{"return", "keep", "keep it"}
	hintsYesNo      = []string{"yes", "no"}
)

func deliveryStatus(o catalog.Order) string {
	return fmt.Sprintf("Order %s for %s is scheduled for delivery on %s. %s",
		o.ID, o.Product, o.DeliveryDate, promptReturnOrKeep)
}

func offerPrompt(o catalog.Offer) string {
	return fmt.Sprintf("We can offer you %s. Would you like to accept this offer? You can say yes or no.", o.Description)
}

func offerAccepted(o catalog.Offer) string {
	return fmt.Sprintf("Okay, we will proceed with the delivery of this product with the offer of %s. Thank you!", o.Description)
}
