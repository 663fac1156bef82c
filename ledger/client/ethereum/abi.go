package ethereum

// contractABI describes the supply-chain contract surface consumed by the
// gateway. Reads are view methods; createTransaction answers with a status
// word instead of reverting so that a rejected candidate costs no gas.
const contractABI = `[
  {"type":"function","name":"getAllParties","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"addr","type":"address"},
     {"name":"name","type":"string"},
     {"name":"location","type":"string"},
     {"name":"role","type":"uint256"}]}]},
  {"type":"function","name":"getParty","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"addr","type":"address"},
     {"name":"name","type":"string"},
     {"name":"location","type":"string"},
     {"name":"role","type":"uint256"}]}]},
  {"type":"function","name":"getAllProducts","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"id","type":"uint256"},
     {"name":"stage","type":"uint256"},
     {"name":"name","type":"string"},
     {"name":"quantity","type":"uint256"},
     {"name":"creator","type":"address"},
     {"name":"holder","type":"address"}]}]},
  {"type":"function","name":"getProduct","stateMutability":"view",
   "inputs":[{"name":"productID","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"id","type":"uint256"},
     {"name":"stage","type":"uint256"},
     {"name":"name","type":"string"},
     {"name":"quantity","type":"uint256"},
     {"name":"creator","type":"address"},
     {"name":"holder","type":"address"}]}]},
  {"type":"function","name":"getProductHistory","stateMutability":"view",
   "inputs":[{"name":"productID","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"eventType","type":"string"},
     {"name":"description","type":"string"},
     {"name":"status","type":"string"},
     {"name":"timestamp","type":"uint256"}]}]},
  {"type":"function","name":"getTransactionHistory","stateMutability":"view",
   "inputs":[{"name":"productID","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"id","type":"uint256"},
     {"name":"sender","type":"address"},
     {"name":"receiver","type":"address"},
     {"name":"productID","type":"uint256"},
     {"name":"price","type":"uint256"},
     {"name":"memo","type":"string"},
     {"name":"timestamp","type":"uint256"}]}]},
  {"type":"function","name":"isNewParty","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"createParty","stateMutability":"nonpayable",
   "inputs":[
     {"name":"name","type":"string"},
     {"name":"location","type":"string"},
     {"name":"role","type":"uint256"},
     {"name":"account","type":"address"}],
   "outputs":[]},
  {"type":"function","name":"createProduct","stateMutability":"nonpayable",
   "inputs":[
     {"name":"creator","type":"address"},
     {"name":"name","type":"string"},
     {"name":"quantity","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"createTransaction","stateMutability":"nonpayable",
   "inputs":[
     {"name":"sender","type":"address"},
     {"name":"receiver","type":"address"},
     {"name":"productID","type":"uint256"},
     {"name":"price","type":"uint256"},
     {"name":"memo","type":"string"}],
   "outputs":[
     {"name":"status","type":"uint256"},
     {"name":"transactionID","type":"uint256"}]}
]`
