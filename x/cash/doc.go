/*
Package cash keeps the balances of all accounts and moves value between
them.

Besides the current balance of every account, each balance change is
recorded as a checkpoint at the block time it happened. Checkpoints make
the balance of any account, and the issued supply of any ticker, readable
as of any past moment. Governance uses them as the source of voting
weight, so that tokens acquired after a snapshot never count.
*/
package cash
