/*
Package mutseq contains the data model of an eight step MIDI sequencer: the
global controls (Config), the step table (Steps), the control surface
(ParamSpecs), presets and the inbound and outbound event types.

The real-time engine that turns these into note events lives in package
engine; package player wraps it for hosts and package gomidi connects it to
MIDI ports and files.
*/
package mutseq
