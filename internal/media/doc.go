// Package media adapts capture and playback devices for the controller.
//
// The controller only needs two capabilities: a [Camera] that yields the current frame and a [Player] that binds
// a song URL to the audio output. Device internals stay behind these interfaces.
//
// [FrameCamera] treats an image file as the video stream, so any tool that periodically writes a frame (a webcam
// grabber, a test fixture) can act as the camera. [CommandPlayer] hands the song URL to an external audio player.
// [EncodeDataURL] turns a frame into the base64 JPEG data URL the analyze endpoint expects.
package media
