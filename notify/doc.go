// Package notify fans alerts out to the recipient list over SMS.
//
// Broadcaster personalizes one message per recipient and isolates failures
// per recipient; AsyncDispatcher detaches the whole broadcast from the
// webhook response path; TwilioSender is the outbound SMS provider client.
package notify
