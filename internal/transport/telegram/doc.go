// Package telegram connects the engine to the Telegram Bot API.
//
// Updates arrive by long polling and become engine envelopes; Sender turns
// router messages back into sendMessage, editMessageText and
// answerCallbackQuery requests.
package telegram
